package ensemble

import (
	"fmt"
	"io"
	"strings"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// voteNodeName is the sink every stump node points to.
const voteNodeName = "vote"

// stumpLabel describes one stump for a graph node.
func stumpLabel(round int, e *Ensemble) string {
	s := e.Stump(round)
	coord := "x1"
	if s.Axis.Feature() == 1 {
		coord = "x2"
	}
	return fmt.Sprintf("#%d: %s > %.4g => %s\nalpha=%.4f eps=%.4f", round, coord, s.Threshold, s.Polarity, s.Alpha, s.Epsilon)
}

// DrawGraph lays out the ensemble as one box per stump, in round order,
// each feeding a single vote node. The caller must Close both returned values.
func DrawGraph(e *Ensemble) (*graphviz.Graphviz, *cgraph.Graph, error) {
	const op = "ensemble.DrawGraph"

	if e.Len() == 0 {
		return nil, nil, sberrors.NewValueError(op, "ensemble is empty")
	}

	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		gv.Close()
		return nil, nil, sberrors.Wrap(err, "failed to create graph")
	}

	vote, err := graph.CreateNode(voteNodeName)
	if err != nil {
		return nil, nil, closeOnError(gv, graph, err)
	}
	vote.Set("label", fmt.Sprintf("sign(sum)\n%d stumps, total alpha=%.4f", e.Len(), e.TotalAlpha(e.Len())))
	vote.Set("shape", "doublecircle")

	for i := 0; i < e.Len(); i++ {
		node, err := graph.CreateNode(fmt.Sprintf("stump_%d", i))
		if err != nil {
			return nil, nil, closeOnError(gv, graph, err)
		}
		node.Set("label", stumpLabel(i, e))
		node.Set("shape", "box")

		if _, err := graph.CreateEdge("", node, vote); err != nil {
			return nil, nil, closeOnError(gv, graph, err)
		}
	}
	return gv, graph, nil
}

func closeOnError(gv *graphviz.Graphviz, graph *cgraph.Graph, err error) error {
	graph.Close()
	gv.Close()
	return sberrors.Wrap(err, "failed to build ensemble graph")
}

// ParseGraphFormat maps "svg", "png", "jpg" or "dot" to a graphviz format.
func ParseGraphFormat(name string) (graphviz.Format, error) {
	switch strings.ToLower(name) {
	case "svg":
		return graphviz.SVG, nil
	case "png":
		return graphviz.PNG, nil
	case "jpg", "jpeg":
		return graphviz.JPG, nil
	case "dot":
		return graphviz.XDOT, nil
	default:
		return "", sberrors.NewValidationError("graph_format", "must be one of svg, png, jpg, dot", name)
	}
}

// RenderGraph draws the ensemble and writes it to w in format.
func RenderGraph(e *Ensemble, format graphviz.Format, w io.Writer) error {
	gv, graph, err := DrawGraph(e)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer graph.Close()

	if err := gv.Render(graph, format, w); err != nil {
		return sberrors.Wrapf(err, "failed to render ensemble graph as %s", format)
	}
	return nil
}

// RenderGraphFile draws the ensemble into path.
func RenderGraphFile(e *Ensemble, format graphviz.Format, path string) error {
	gv, graph, err := DrawGraph(e)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer graph.Close()

	if err := gv.RenderFilename(graph, format, path); err != nil {
		return sberrors.Wrapf(err, "failed to render ensemble graph to %s", path)
	}
	return nil
}
