// Package transport implements the two ways of obtaining a generated setlist
// from the backend and the decoding boundary shared by both.
//
// [Push] subscribes to the server-sent event stream and forwards each decoded
// event. [Pull] issues one long request and yields a single terminal outcome,
// preceded by a synthetic progress notification.
//
// Both satisfy [Adapter]: a subscription emits [Frame] values on a channel that
// is closed when the adapter is finished. Closing a subscription never blocks.
package transport
