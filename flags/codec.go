package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CodecFlags override the byte order, address width and verify policy of
// the cursors. A layout file sets the first two as well; flags win.

func CodecFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "big-endian",
			Usage: "Read and write most significant byte first",
		},
		cli.BoolFlag{
			Name:  "64bit",
			Usage: "Use 8 byte pointers aligned to 8",
		},
		cli.BoolTFlag{
			Name:  "strict",
			Usage: "Fail on the first verify mismatch (--strict=false only logs it)",
		},
	}
}

// IOFlags select the layout and where bytes come from and go to.
func IOFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "layout",
			Usage: "YAML layout file describing the record",
		},
		cli.Int64Flag{
			Name:  "offset",
			Usage: "Byte offset of the record in the input",
		},
		cli.StringFlag{
			Name:  "hex",
			Usage: "Take the input from this 0x-prefixed hex string instead of a file",
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "Output file for build (default stdout as hex)",
		},
	}
}
