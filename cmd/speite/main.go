package main

import (
	"speite/cmd/speite/cmd"

	// Import engines to register them
	_ "speite/internal/app/api/openai/whisper"
	_ "speite/internal/app/api/whisper_cpp"
	_ "speite/internal/app/api/whisper_server"
)

func main() {
	cmd.Execute()
}
