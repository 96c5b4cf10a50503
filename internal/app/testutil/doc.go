// Package testutil provides shared test helpers.
//
// MockEngine (mock_engine.go) is a testify mock of provider.Engine for
// exercising the speech-to-text service and the wiring without a model.
//
// The fixtures (fixtures.go) build audio buffers and WAV files at test time:
//   - SineBuffer / SilentBuffer: in-memory mono buffers
//   - WriteWAV: a 16-bit PCM WAV in the test's temp dir
//   - SampleResult: a transcription result with segments
package testutil
