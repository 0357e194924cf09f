// Command cpsolverplugin is a standalone binary exposing the in-process
// OR-Tools backend (ortoolscp) as a go-plugin subprocess, over the net/rpc
// protocol internal/scheduling/infrastructure/cpsolver/plugin defines. It
// exists so plugin.Load has a genuine counterpart to launch: build this
// binary and set the process config's SolverPluginPath to its path to run
// CP-SAT out-of-process instead of in-process.
package main

import (
	hcplugin "github.com/hashicorp/go-plugin"

	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver/ortoolscp"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver/plugin"
)

func main() {
	hcplugin.Serve(&hcplugin.ServeConfig{
		HandshakeConfig: plugin.HandshakeConfig,
		Plugins: plugin.PluginMap(&plugin.CPSolverPlugin{
			Impl: ortoolscp.NewFactory(),
		}),
	})
}
