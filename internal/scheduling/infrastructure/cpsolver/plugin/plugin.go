package plugin

import (
	"net/rpc"

	hcplugin "github.com/hashicorp/go-plugin"

	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
)

// CPSolverPlugin implements go-plugin's classic net/rpc Plugin interface on
// both sides of the boundary. Impl is only set on the plugin-binary side
// (the concrete backend, e.g. ortoolscp.NewFactory()); the host side
// constructs a zero-value CPSolverPlugin purely to get Client called.
type CPSolverPlugin struct {
	Impl cpsolver.Factory
}

// Server is called inside the plugin binary's process. It publishes a
// ModelServer wrapping Impl for the host to call over net/rpc.
func (p *CPSolverPlugin) Server(*hcplugin.MuxBroker) (interface{}, error) {
	return NewModelServer(p.Impl), nil
}

// Client is called in the host process once the plugin binary's handshake
// succeeds. It returns the cpsolver.Factory the rest of this module
// programs against, identical in shape to ortoolscp.NewFactory()'s return
// value.
func (p *CPSolverPlugin) Client(_ *hcplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &rpcFactory{client: c}, nil
}
