// Package ws implements the WebSocket hub that streams the dataset summary
// to connected dashboard clients.
//
// The hub broadcasts an api.SummaryResponse wrapped in a Message envelope on
// connect and then on a fixed interval. Slow clients whose send buffer fills
// are disconnected rather than blocking the broadcast loop.
package ws
