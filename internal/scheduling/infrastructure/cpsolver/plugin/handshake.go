// Package plugin lets the in-process ortoolscp backend be swapped for an
// out-of-process CP-SAT implementation launched as a separate binary,
// speaking net/rpc over HashiCorp go-plugin's stdio handshake, narrowed
// to the one plugin boundary this domain defines: a cpsolver.Factory.
package plugin

import hcplugin "github.com/hashicorp/go-plugin"

// HandshakeConfig must be shared verbatim by the host (Loader) and every
// plugin binary; a mismatched MagicCookieValue fails the handshake before
// any RPC is attempted, so a plugin built against a different protocol
// version is rejected cleanly instead of talking garbage over stdio.
var HandshakeConfig = hcplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PANELSCHED_SOLVER_PLUGIN",
	MagicCookieValue: "panelsched-solver-v1",
}

// pluginName is the key both ServeConfig and ClientConfig register the
// CPSolverPlugin under, and what Dispense asks for.
const pluginName = "cpsolver"

// PluginMap is the map every go-plugin ClientConfig/ServeConfig on this
// boundary shares.
func PluginMap(impl *CPSolverPlugin) map[string]hcplugin.Plugin {
	return map[string]hcplugin.Plugin{pluginName: impl}
}
