package util

import (
	"strings"

	"github.com/spotify/snakebite/rpc/common"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds common NameNode connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "namenodes"
	cmd.PersistentFlags().StringP(key, "n", "localhost", WrapString("NameNode addresses as a comma-separated list of host[:port[:version]] entries, tried in order"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 30, WrapString("Per-request timeout in seconds (0 disables the timeout)"))

	key = "user"
	cmd.PersistentFlags().String(key, "", WrapString("Effective user to act as (defaults to the local user)"))

	key = "skiptrash"
	cmd.PersistentFlags().BoolP(key, "S", false, WrapString("Delete permanently instead of moving to trash"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("Log level (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("snakebite")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	endpoints, err := common.ParseEndpoints(viper.GetString("namenodes"))
	if err != nil {
		return nil, err
	}

	return &common.ClientConfig{
		Endpoints:     endpoints,
		EffectiveUser: viper.GetString("user"),
		TimeoutSecond: viper.GetInt("timeout"),
		SkipTrash:     viper.GetBool("skiptrash"),
	}, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
