package plugin

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"
	hcplugin "github.com/hashicorp/go-plugin"

	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
	"github.com/meridianhire/panelsched/internal/shared/infrastructure/security"
)

// Load launches binaryPath as a go-plugin subprocess and dispenses its
// cpsolver.Factory via the standard plugin.NewClient/Dispense shape,
// narrowed to this module's one plugin boundary: there is no manifest
// registry or checksum verification step, a binary path is all
// SolverDriver needs to swap backends.
//
// The returned io.Closer kills the plugin subprocess; callers must Close it
// once the factory is no longer needed (typically via defer at startup).
func Load(binaryPath string, logger *slog.Logger) (cpsolver.Factory, io.Closer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sanitized, err := validateBinaryPath(binaryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("plugin: invalid binary path: %w", err)
	}

	info, err := os.Stat(sanitized)
	if err != nil {
		return nil, nil, fmt.Errorf("plugin: binary not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("plugin: %s is not a regular file", sanitized)
	}

	logger.Info("loading cpsolver plugin", "binary", sanitized)

	// #nosec G204 -- binaryPath is validated by validateBinaryPath
	client := hcplugin.NewClient(&hcplugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap(&CPSolverPlugin{}),
		Cmd:             exec.Command(sanitized),
		Logger:          newHclogAdapter(logger),
		AllowedProtocols: []hcplugin.Protocol{
			hcplugin.ProtocolNetRPC,
		},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin: failed to connect to %s: %w", sanitized, err)
	}

	raw, err := rpcClient.Dispense(pluginName)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin: failed to dispense %s: %w", sanitized, err)
	}

	factory, ok := raw.(cpsolver.Factory)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin: %s does not implement cpsolver.Factory", sanitized)
	}

	logger.Info("cpsolver plugin loaded", "binary", sanitized)
	return factory, clientCloser{client}, nil
}

type clientCloser struct{ client *hcplugin.Client }

func (c clientCloser) Close() error {
	c.client.Kill()
	return nil
}

// validateBinaryPath requires an absolute path (an explicit choice for a
// subprocess binary, not left to cwd-relative resolution) and otherwise
// delegates to security.ValidateFilePath for the shell-metacharacter and
// symlink-resolution checks every path this module hands to exec.Command
// goes through.
func validateBinaryPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("binary path cannot be empty")
	}
	if !filepath.IsAbs(filepath.Clean(path)) {
		return "", fmt.Errorf("binary path must be absolute: %s", path)
	}
	return security.ValidateFilePath(path)
}

// hclogAdapter bridges this module's slog.Logger into the hclog.Logger
// interface go-plugin's ClientConfig requires for subprocess log forwarding.
type hclogAdapter struct {
	logger *slog.Logger
	name   string
}

func newHclogAdapter(logger *slog.Logger) *hclogAdapter {
	return &hclogAdapter{logger: logger, name: "panelsched"}
}

func (h *hclogAdapter) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		h.logger.Debug(msg, args...)
	case hclog.Warn:
		h.logger.Warn(msg, args...)
	case hclog.Error:
		h.logger.Error(msg, args...)
	default:
		h.logger.Info(msg, args...)
	}
}

func (h *hclogAdapter) Trace(msg string, args ...interface{}) { h.logger.Debug(msg, args...) }
func (h *hclogAdapter) Debug(msg string, args ...interface{}) { h.logger.Debug(msg, args...) }
func (h *hclogAdapter) Info(msg string, args ...interface{})  { h.logger.Info(msg, args...) }
func (h *hclogAdapter) Warn(msg string, args ...interface{})  { h.logger.Warn(msg, args...) }
func (h *hclogAdapter) Error(msg string, args ...interface{}) { h.logger.Error(msg, args...) }

func (h *hclogAdapter) IsTrace() bool { return false }
func (h *hclogAdapter) IsDebug() bool { return true }
func (h *hclogAdapter) IsInfo() bool  { return true }
func (h *hclogAdapter) IsWarn() bool  { return true }
func (h *hclogAdapter) IsError() bool { return true }

func (h *hclogAdapter) ImpliedArgs() []interface{} { return nil }

func (h *hclogAdapter) With(args ...interface{}) hclog.Logger { return h }

func (h *hclogAdapter) Name() string { return h.name }

func (h *hclogAdapter) Named(name string) hclog.Logger {
	return &hclogAdapter{logger: h.logger, name: h.name + "." + name}
}

func (h *hclogAdapter) ResetNamed(name string) hclog.Logger {
	return &hclogAdapter{logger: h.logger, name: name}
}

func (h *hclogAdapter) SetLevel(level hclog.Level) {}

func (h *hclogAdapter) GetLevel() hclog.Level { return hclog.Debug }

func (h *hclogAdapter) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.Default()
}

func (h *hclogAdapter) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return os.Stderr
}
