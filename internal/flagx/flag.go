// Package flagx lets several configuration layers share os.Args without
// tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags (and their values).
//
// Both "-f value" and "-f=value" forms are recognised. A value is taken from
// the next argument only when it does not itself start with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// stringFlag returns the last value given for any of the aliases.
// Aliases are flag names without the leading dash.
func stringFlag(args []string, aliases ...string) string {
	var value string

	allowed := make([]string, 0, len(aliases))
	for _, a := range aliases {
		allowed = append(allowed, "-"+a)
	}

	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	for _, a := range aliases {
		fs.StringVar(&value, a, "", "")
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}

// JsonConfigFlags returns the JSON config path given with -c or -config,
// or "" when neither is present.
func JsonConfigFlags() string {
	return stringFlag(os.Args[1:], "c", "config")
}

// EnvFileFlags returns the dotenv file path given with -env-file, or "".
func EnvFileFlags() string {
	return stringFlag(os.Args[1:], "env-file")
}

// Positional returns the arguments that are neither flags nor values of the
// flags listed in valueFlags. Flags not in valueFlags are treated as booleans.
func Positional(args []string, valueFlags []string) []string {
	takesValue := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			out = append(out, arg)
			continue
		}
		if strings.Contains(arg, "=") {
			continue
		}
		if _, ok := takesValue[arg]; ok && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}
	return out
}
