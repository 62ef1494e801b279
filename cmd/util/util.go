package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/serializer"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
	"github.com/ValentinKolb/dSEQ/rpc/transport/http"
	"github.com/ValentinKolb/dSEQ/rpc/transport/tcp"
	"github.com/ValentinKolb/dSEQ/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// helpTextWidth is the column flag help texts are wrapped at
const helpTextWidth = 50

// WrapString word-wraps flag help text to helpTextWidth columns
func WrapString(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := lines[len(lines)-1]
		if len(last)+1+len(word) > helpTextWidth {
			lines = append(lines, word)
		} else {
			lines[len(lines)-1] = last + " " + word
		}
	}
	return strings.Join(lines, "\n")
}

// SetupRPCClientFlags adds the connection flags shared by every client command
func SetupRPCClientFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Int("timeout", 10,
		WrapString("The timeout in seconds of the client"))
	flags.String("transport-endpoints", "http://localhost:8080",
		WrapString("The address of the dSEQ server. For transports that support load balancing, multiple endpoints can be specified as a comma-separated list"))
	flags.Int("transport-conn-per-endpoint", 1,
		WrapString("Simultaneous connections per endpoint - for transports that support this feature"))
	flags.Int("transport-retries", 3,
		WrapString("How many times to retry the request"))
}

// InitClientConfig loads env files and wires viper to DSEQ_* environment
// variables
func InitClientConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("dseq")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// GetClientConfig assembles the client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond:          viper.GetInt("timeout"),
		RetryCount:             viper.GetInt("transport-retries"),
		Endpoints:              strings.Split(viper.GetString("transport-endpoints"), ","),
		ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
	}
}

// GetSerializer resolves the configured serializer name
func GetSerializer() (serializer.IRPCSerializer, error) {
	name := viper.GetString("serializer")
	switch name {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "gob":
		return serializer.NewGOBSerializer(), nil
	case "binary":
		return serializer.NewBinarySerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
}

// GetTransport resolves the configured transport name
func GetTransport() (transport.IRPCClientTransport, error) {
	name := viper.GetString("transport")
	switch name {
	case "http":
		return http.NewHttpClientTransport(), nil
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// GetShardID retrieves the configured shard ID
func GetShardID() uint64 {
	return uint64(viper.GetInt("shard"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
