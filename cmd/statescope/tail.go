// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/statescope/statescope/lib/netutil"
	"github.com/statescope/statescope/wire"
)

// runTail connects to the record stream and prints records until the
// server closes the connection or the context is cancelled.
func runTail(ctx context.Context, defaultAddress string, args []string) error {
	var (
		address     string
		raw         bool
		capturePath string
	)
	flagSet := pflag.NewFlagSet("statescope tail", pflag.ContinueOnError)
	flagSet.StringVar(&address, "address", defaultAddress, "stream address (host:port)")
	flagSet.BoolVar(&raw, "raw", false, "print records exactly as received, without color or reformatting")
	flagSet.StringVar(&capturePath, "capture", "", "append every record to this zstd-compressed file")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "Usage:\n  statescope tail [flags]\n\nFlags:")
			flagSet.SetOutput(os.Stderr)
			flagSet.PrintDefaults()
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("connecting to stream at %s: %w", address, err)
	}
	defer conn.Close()
	// Closing the connection is what unblocks the read loop when the
	// operator interrupts.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var capture *captureWriter
	if capturePath != "" {
		capture, err = newCapture(capturePath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := capture.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "error: closing capture: %v\n", closeErr)
			}
		}()
	}

	render := newRenderer(!raw && term.IsTerminal(int(os.Stdout.Fd())))
	reader := bufio.NewReader(&telnetFilter{r: conn})
	for {
		line, err := reader.ReadString('\n')
		if record := strings.TrimRight(line, "\r\n"); record != "" {
			if capture != nil {
				if captureErr := capture.WriteLine(record); captureErr != nil {
					return fmt.Errorf("writing capture: %w", captureErr)
				}
			}
			if raw {
				fmt.Println(record)
			} else {
				fmt.Println(render.line(record))
			}
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || netutil.IsExpectedClose(err) {
				return nil
			}
			return fmt.Errorf("reading stream: %w", err)
		}
	}
}

const (
	telnetStateData = iota
	telnetStateCommand
	telnetStateOption
)

// telnetFilter strips telnet IAC sequences from a record stream: the
// server's negotiation preamble, and anything a proxy between the
// daemon and the consumer injects. An escaped IAC IAC passes through
// as a literal 0xFF; three-byte negotiation sequences (IAC WILL/WONT/
// DO/DONT option) and two-byte commands are removed entirely.
type telnetFilter struct {
	r     io.Reader
	state int
}

func (f *telnetFilter) Read(p []byte) (int, error) {
	for {
		n, err := f.r.Read(p)
		kept := 0
		for _, b := range p[:n] {
			switch f.state {
			case telnetStateData:
				if b == wire.TelnetIAC {
					f.state = telnetStateCommand
				} else {
					p[kept] = b
					kept++
				}
			case telnetStateCommand:
				switch {
				case b == wire.TelnetIAC:
					p[kept] = b
					kept++
					f.state = telnetStateData
				case b >= wire.TelnetWILL && b <= wire.TelnetDONT:
					f.state = telnetStateOption
				default:
					f.state = telnetStateData
				}
			case telnetStateOption:
				f.state = telnetStateData
			}
		}
		if kept > 0 || err != nil {
			return kept, err
		}
	}
}

// captureWriter appends record lines to a zstd-compressed file. Each
// run appends one frame; concatenated frames decode back as a single
// stream.
type captureWriter struct {
	file    *os.File
	encoder *zstd.Encoder
}

func newCapture(path string) (*captureWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening capture file: %w", err)
	}
	encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("initializing capture encoder: %w", err)
	}
	return &captureWriter{file: file, encoder: encoder}, nil
}

// WriteLine appends one record with a bare LF terminator. The capture
// format is plain lines; CRLF is a transport detail not worth keeping.
func (c *captureWriter) WriteLine(record string) error {
	if _, err := io.WriteString(c.encoder, record); err != nil {
		return err
	}
	_, err := c.encoder.Write([]byte{'\n'})
	return err
}

func (c *captureWriter) Close() error {
	return errors.Join(c.encoder.Close(), c.file.Close())
}
