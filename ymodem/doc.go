// Package ymodem implements the sending side of YMODEM-1K as spoken by the
// WS63 loaders: one file per session, CRC-16 blocks, 1024-byte data blocks.
//
//	s := ymodem.NewSender(ch, ymodem.WithBlockFunc(progress))
//	err := s.Send(ctx, "app.bin", f, size)
package ymodem
