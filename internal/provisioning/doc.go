// Package provisioning implements the credential portal served while the
// device is in access point mode.
//
// The portal is a deliberately minimal HTTP/1.0 server. It accepts one TCP
// connection at a time, reads exactly one request from it, answers, and
// closes the connection. No general purpose HTTP stack is involved on the
// serving side; the request parser is small enough to audit by hand.
//
// # Protocol
//
//	GET <any path>   200 OK with the configured form page
//	POST <any path>  form-urlencoded body with "ssid" and "password" fields:
//	                 200 OK when both are present and non-empty,
//	                 400 Bad Request with an error page otherwise
//	anything else    400 Bad Request
//
// Request bodies may arrive across several socket reads (browsers commonly
// send the POST body as a separate segment); the parser keeps reading until
// the declared Content-Length has been received.
//
// # Known limitations
//
// Header lines are split on the first colon only and the remainder up to the
// next colon is taken as the value, so header values containing ':' are
// truncated. Percent-decoding operates on single bytes: each %XX escape
// becomes the code point with that byte value, so multi-byte UTF-8 sequences
// sent percent-encoded are not reassembled.
//
// # Usage Example
//
//	srv := provisioning.New(provisioning.DefaultConfig())
//	if err := srv.Listen(ctx); err != nil {
//	    return err
//	}
//	creds, err := srv.Credentials(ctx)
//
// Client submits credentials to a running portal, which is how the CLI's
// submit command and the integration tests talk to it.
package provisioning
