// Package statsview serves charts of the emulator's Go runtime statistics
// (heap, goroutines, GC pauses) over HTTP. The server is only compiled in
// with the statsview build tag:
//
//	go build -tags statsview
//
// Charts are then at http://DefaultAddress/debug/statsview.
package statsview

// DefaultAddress is where the server listens unless told otherwise.
const DefaultAddress = "localhost:12608"

// Path is the page serving the charts.
const Path = "/debug/statsview"
