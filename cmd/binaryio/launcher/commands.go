package launcher

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/burninrubber0/libbinaryio/binaryio"
	"github.com/burninrubber0/libbinaryio/flags"
	"github.com/burninrubber0/libbinaryio/layout"
)

var (
	errNoLayout = errors.New("a layout is required (--layout)")
	errNoInput  = errors.New("an input file or --hex is required")
)

func dumpCommand() cli.Command {
	return cli.Command{
		Name:      "dump",
		Usage:     "Decode a record and print one line per field",
		ArgsUsage: "[INPUT]",
		Flags:     flags.IOFlags(),
		Action: func(ctx *cli.Context) error {
			return decodeAction(ctx, true)
		},
	}
}

func verifyCommand() cli.Command {
	return cli.Command{
		Name:      "verify",
		Usage:     "Decode a record and check expected values; strict mode stops at the first mismatch",
		ArgsUsage: "[INPUT]",
		Flags:     flags.IOFlags(),
		Action: func(ctx *cli.Context) error {
			return decodeAction(ctx, false)
		},
	}
}

func buildCommand() cli.Command {
	return cli.Command{
		Name:   "build",
		Usage:  "Encode the values of a layout",
		Flags:  flags.IOFlags(),
		Action: buildAction,
	}
}

// env is what every command starts from.
type env struct {
	cfg    Config
	log    *logrus.Logger
	layout *layout.Layout
	codec  binaryio.Config
}

func setup(ctx *cli.Context) (*env, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg, ctx.App.ErrWriter)
	if err != nil {
		return nil, err
	}
	if cfg.IO.Layout == "" {
		return nil, errNoLayout
	}
	l, err := layout.Load(cfg.IO.Layout)
	if err != nil {
		return nil, err
	}
	if cfg.Codec.BigEndian {
		l.BigEndian = true
	}
	if cfg.Codec.Wide {
		l.AddressWidth = 64
	}
	codec, err := cfg.Binaryio(logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: logger, layout: l, codec: l.Config(codec)}, nil
}

// decodeAction prints every decoded field. dump always continues past
// mismatches; verify honours the configured policy.
func decodeAction(ctx *cli.Context, lenient bool) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	if lenient {
		e.codec.Verify = binaryio.VerifyLenient
	}
	data, err := readInput(ctx, e.cfg.IO)
	if err != nil {
		return err
	}

	r, err := binaryio.NewReader(data, e.codec).CloneAt(e.cfg.IO.Offset)
	if err != nil {
		return err
	}
	values, err := layout.Decode(r, e.layout)
	for _, v := range values {
		fmt.Fprintln(ctx.App.Writer, v)
	}
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"fields": len(values),
		"start":  fmt.Sprintf("0x%x", e.cfg.IO.Offset),
		"end":    fmt.Sprintf("0x%x", r.Offset()),
		"verify": e.codec.Verify,
	}).Info("Decoded record")
	if !r.EOF() {
		e.log.WithField("trailing", r.Remaining()).Debug("Bytes left after record")
	}
	return nil
}

func buildAction(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	w := binaryio.NewWriter(e.codec)
	if _, err := w.Seek(e.cfg.IO.Offset, io.SeekStart); err != nil {
		return err
	}
	if err := layout.Encode(w, e.layout); err != nil {
		return err
	}
	out := w.Bytes()

	if e.cfg.IO.Out == "" {
		fmt.Fprintln(ctx.App.Writer, hexutil.Encode(out))
	} else if err := os.WriteFile(e.cfg.IO.Out, out, 0o644); err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"size": len(out),
		"out":  e.cfg.IO.Out,
	}).Info("Built record")
	return nil
}

// readInput takes --hex when given, the first argument otherwise. The hex
// string must carry the 0x prefix.
func readInput(ctx *cli.Context, in IOConfig) ([]byte, error) {
	if in.Hex != "" {
		data, err := hexutil.Decode(in.Hex)
		if err != nil {
			return nil, fmt.Errorf("--hex: %w", err)
		}
		return data, nil
	}
	if ctx.NArg() == 0 {
		return nil, errNoInput
	}
	return os.ReadFile(resolvePath(ctx.Args().First()))
}
