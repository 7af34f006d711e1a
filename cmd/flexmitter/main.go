// Command flexmitter reads newline-delimited JSON page requests from
// stdin and writes the encoded raw bitstream for each to a configured
// output, cycling the frame/cycle counters the way a real FLEX
// transmitter advances them between messages.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/tsl-sdr/gochannelizer/internal/app"
	"github.com/tsl-sdr/gochannelizer/internal/config"
	"github.com/tsl-sdr/gochannelizer/internal/flex"
	"github.com/tsl-sdr/gochannelizer/internal/logging"
	"github.com/tsl-sdr/gochannelizer/internal/task"
)

const (
	framesPerCycle = 128
	cyclesPerHyper = 15
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: flexmitter [options] <config file> [config file ...]\n")
	fmt.Fprintf(os.Stderr, "reads newline-delimited JSON page requests from stdin\n")
	pflag.PrintDefaults()
}

// page is the on-the-wire JSON shape of one request read from stdin.
type page struct {
	Capcode    uint64 `json:"capcode"`
	Numeric    bool   `json:"numeric"`
	Digits     string `json:"digits"`
	Text       string `json:"text"`
	MailDrop   bool   `json:"mailDrop"`
	Fragmented bool   `json:"fragmented"`
	SeqNum     uint8  `json:"seqNum"`
}

func main() {
	out := pflag.StringP("out", "o", "", "Output path for the raw encoded bitstream (defaults to stdout).")
	help := pflag.BoolP("help", "h", false, "Display usage and exit.")
	pflag.Usage = usage
	pflag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	if len(pflag.Args()) == 0 {
		usage()
		os.Exit(1)
	}

	if err := run(pflag.Args(), *out); err != nil {
		logging.New().Error("flexmitter failed", "err", err)
		os.Exit(1)
	}
}

func run(configPaths []string, outPath string) error {
	cfg, err := config.Load(configPaths...)
	if err != nil {
		return err
	}

	a := app.New(cfg)
	a.CatchSIGINT()

	w := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("opening output: %w", err)
		}
		defer f.Close()
		w = f
	}

	frameNumber, cycleNumber := 0, 0
	scanner := bufio.NewScanner(os.Stdin)
	for a.Running() && scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var p page
		if err := json.Unmarshal(line, &p); err != nil {
			a.Log.Warn("skipping malformed page request", "err", err)
			continue
		}

		req := flex.PageRequest{
			Capcode:    p.Capcode,
			Numeric:    p.Numeric,
			Digits:     p.Digits,
			Text:       p.Text,
			MailDrop:   p.MailDrop,
			Fragmented: p.Fragmented,
			SeqNum:     p.SeqNum,
		}

		if err := encodePage(w, req, frameNumber, cycleNumber); err != nil {
			return fmt.Errorf("encoding page for capcode %d: %w", p.Capcode, err)
		}

		frameNumber++
		if frameNumber >= framesPerCycle {
			frameNumber = 0
			cycleNumber = (cycleNumber + 1) % cyclesPerHyper
		}
	}

	return scanner.Err()
}

// encodePage drives one page request's EncodeTask to completion, writing
// each step's output bits as packed bytes, MSB first.
func encodePage(w io.Writer, req flex.PageRequest, frameNumber, cycleNumber int) error {
	t := task.Task[struct{}, []bool](flex.NewEncodeTask(req, frameNumber, cycleNumber))

	for {
		bits, state, err := t.Step(struct{}{})
		if err != nil {
			return err
		}
		if len(bits) > 0 {
			if _, err := w.Write(packBits(bits)); err != nil {
				return err
			}
		}
		if state == task.Done {
			return nil
		}
	}
}

// packBits packs a slice of bits, MSB first, into bytes, zero-padding the
// final byte if bits isn't a multiple of 8.
func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
