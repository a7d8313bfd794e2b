package zstd

import "io"

// StreamingDecoder adapts a Decoder to io.Reader over an underlying
// io.Reader source of compressed bytes. A block's entropy decode cannot
// be restarted partway through, so the decoder always buffers a whole
// block's compressed bytes before producing any of its output; Read
// distinguishes "decoded output is waiting" from "the source has more to
// give", keeps pulling from the source while no decoded output is ready,
// and returns io.ErrUnexpectedEOF when the source ends before the frame is
// finished.
type StreamingDecoder struct {
	dec    *Decoder
	src    io.Reader
	buf    []byte // scratch read from src, handed to the decoder a chunk at a time
	srcEOF bool
}

// chunkSize is how much compressed input NewStreamingDecoder pulls from
// src per underlying Read, mirroring the "batch single-byte reads"
// guidance for sources that may hand back very small chunks.
const chunkSize = 32 * 1024

// NewStreamingDecoder wraps src, pulling compressed bytes from it on
// demand to satisfy Read calls against dec.
func NewStreamingDecoder(dec *Decoder, src io.Reader) *StreamingDecoder {
	return &StreamingDecoder{dec: dec, src: src, buf: make([]byte, chunkSize)}
}

// Read fills p with decoded bytes, pulling and feeding more compressed
// input from the underlying source as needed. It returns io.EOF once the
// frame is finished and every decoded byte has been delivered.
func (s *StreamingDecoder) Read(p []byte) (int, error) {
	for {
		// Drain whatever is already decoded before asking the source for
		// anything more; an unfinished frame can still have output ready.
		_, written, err := s.dec.DecodeFromTo(nil, p)
		if err != nil {
			return written, err
		}
		if written > 0 {
			return written, nil
		}
		if s.dec.IsFinished() {
			return 0, io.EOF
		}

		if s.srcEOF {
			return 0, io.ErrUnexpectedEOF
		}

		nr, err := s.src.Read(s.buf)
		if nr > 0 {
			_, written, derr := s.dec.DecodeFromTo(s.buf[:nr], p)
			if derr != nil {
				return written, derr
			}
			if written > 0 {
				return written, nil
			}
		}
		switch {
		case err == io.EOF:
			s.srcEOF = true
		case err != nil:
			return 0, err
		}
	}
}
