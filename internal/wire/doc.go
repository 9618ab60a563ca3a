// Package wire defines the frames exchanged between a host session and a
// browser runtime, and the codecs used to put them on the connection.
//
// Every message is a single Frame. Requests (invoke, callback, dispose)
// carry a non-zero ID and are answered by exactly one result frame with the
// same ID. The hello frame is unsolicited and never answered.
//
// Payloads (arguments and results) are kept as Raw values encoded with the
// same codec as the enclosing frame, so they can be decoded lazily into the
// type the receiver expects:
//
//	frame, _ := wire.DecodeFrame(codec, data)
//	var key string
//	_ = codec.Unmarshal(frame.Args[0], &key)
//
// Two codecs are available: JSON (text frames) and CBOR (binary frames).
package wire
