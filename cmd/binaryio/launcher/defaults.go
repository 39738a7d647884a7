package launcher

import "time"

// Defaults bundles the baseline configuration values the launcher uses
// before config files and flags override them.

type Defaults struct {
	Logging LoggingDefaults
	Sentry  SentryDefaults
	Codec   CodecDefaults
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs.
}

// SentryDefaults configures the optional remote error hook.
type SentryDefaults struct {
	DSN     string        //	Sentry project DSN. Empty disables the hook.
	Timeout time.Duration //	How long a log call may block while the event is sent.
}

// CodecDefaults are the cursor settings used when neither the layout nor a
// flag says otherwise.
type CodecDefaults struct {
	BigEndian bool   //	Most significant byte first.
	Wide      bool   //	8 byte pointers aligned to 8 instead of 4.
	Verify    string //	Mismatch policy, strict or lenient.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
		Sentry: SentryDefaults{
			Timeout: 2 * time.Second,
		},
		Codec: CodecDefaults{
			BigEndian: false,
			Wide:      false,
			Verify:    "strict",
		},
	}
}
