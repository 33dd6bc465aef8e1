package configure

// Options holds the parsed command line flags for the configure command.
type Options struct {
	Help    bool
	Rebuild bool
	Dry     bool
}

// UsageError is returned for any token ParseArgs doesn't recognize.
type UsageError struct {
	Token string
}

func (e *UsageError) Error() string {
	return "Unknown option: " + e.Token
}

// ParseArgs processes the raw argument list. The contract is strict: help
// short-circuits everything else and any unknown token fails the whole
// invocation before side effects happen.
func ParseArgs(args []string) (Options, error) {
	var opts Options
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			opts.Help = true
			return opts, nil
		case "-r", "--re-build":
			opts.Rebuild = true
		case "--dry":
			opts.Dry = true
		default:
			return Options{}, &UsageError{Token: arg}
		}
	}

	return opts, nil
}
