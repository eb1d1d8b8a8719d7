package routes

import (
	"fmt"
	"net/http"

	"github.com/OFFIS-RIT/stormgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/graph"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// graphFragmentLimit bounds the fragments returned with a graph.
const graphFragmentLimit = 10

type docParams struct {
	DocID string `query:"doc_id" validate:"required"`
}

type idParams struct {
	ID string `param:"id" validate:"required"`
}

func GetGraphHandler(c echo.Context) error {
	type graphResponse struct {
		Nodes     []common.Node     `json:"nodes"`
		Edges     []common.Edge     `json:"edges"`
		Fragments []common.Fragment `json:"doc_frags"`
	}

	params := new(docParams)
	if err := c.Bind(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}

	s := c.(*middleware.AppContext).App.Store
	res := graphResponse{}

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		nodes, err := s.GetNodes(ctx, params.DocID, []common.ConceptType{
			common.ConceptAggregate,
			common.ConceptCommand,
			common.ConceptEvent,
			common.ConceptPolicy,
		})
		res.Nodes = nodes
		return err
	})
	g.Go(func() error {
		edges, err := s.GetEdges(ctx, params.DocID, common.ConceptEdgeTypes)
		res.Edges = edges
		return err
	})
	g.Go(func() error {
		fragments, err := s.GetFragments(ctx, params.DocID, graphFragmentLimit)
		res.Fragments = fragments
		return err
	})
	if err := g.Wait(); err != nil {
		return storeError(c, err)
	}

	if res.Nodes == nil {
		res.Nodes = []common.Node{}
	}
	if res.Edges == nil {
		res.Edges = []common.Edge{}
	}
	if res.Fragments == nil {
		res.Fragments = []common.Fragment{}
	}

	logger.Debug("[Server] Retrieved graph", "doc_id", params.DocID, "nodes", len(res.Nodes), "edges", len(res.Edges))
	return c.JSON(http.StatusOK, res)
}

// CreateNodesHandler creates or overwrites concept nodes of a document. Nodes
// without an id get a fresh one.
func CreateNodesHandler(c echo.Context) error {
	type nodeBody struct {
		ID    string         `json:"id"`
		Type  string         `json:"type" validate:"required,oneof=Aggregate Command Event Policy"`
		Name  string         `json:"name" validate:"required"`
		Props map[string]any `json:"props"`

		Confidence *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	}

	type createNodesBody struct {
		DocID string     `json:"doc_id" validate:"required"`
		Nodes []nodeBody `json:"nodes" validate:"required,min=1,dive"`
	}

	type createNodesResponse struct {
		Status string        `json:"status"`
		Count  int           `json:"count"`
		Nodes  []common.Node `json:"nodes"`
	}

	data := new(createNodesBody)
	if err := c.Bind(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	for i := range data.Nodes {
		n := &data.Nodes[i]
		if n.ID != "" && !graph.NodeIDMatches(common.ConceptType(n.Type), n.ID) {
			return errorJSON(c, http.StatusBadRequest, fmt.Sprintf("Node id %q does not match type %s", n.ID, n.Type))
		}
		if raw, ok := n.Props["confidence"]; ok && n.Confidence == nil {
			f, isNum := raw.(float64)
			if !isNum {
				return errorJSON(c, http.StatusBadRequest, "Confidence must be a number between 0 and 1")
			}
			n.Confidence = &f
		}
		if n.Confidence != nil {
			if err := c.Validate(n); err != nil {
				return errorJSON(c, http.StatusBadRequest, "Confidence must be a number between 0 and 1")
			}
			if n.Props == nil {
				n.Props = make(map[string]any)
			}
			n.Props["confidence"] = *n.Confidence
		}
	}

	ctx := c.Request().Context()
	s := c.(*middleware.AppContext).App.Store

	nodes := make([]common.Node, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		node := common.Node{
			ID:    n.ID,
			DocID: data.DocID,
			Type:  common.ConceptType(n.Type),
			Name:  n.Name,
			Props: n.Props,
		}
		if node.ID == "" {
			id, err := graph.NewNodeID(node.Type)
			if err != nil {
				return storeError(c, err)
			}
			node.ID = id
		}
		if err := s.UpsertNode(ctx, node); err != nil {
			return storeError(c, err)
		}
		nodes = append(nodes, node)
	}

	logger.Info("[Server] Nodes written", "doc_id", data.DocID, "count", len(nodes))
	return c.JSON(http.StatusOK, createNodesResponse{
		Status: "success",
		Count:  len(nodes),
		Nodes:  nodes,
	})
}

// CreateEdgesHandler merges edges between existing nodes, e.g. AFFECTS
// links drawn by hand between aggregates.
func CreateEdgesHandler(c echo.Context) error {
	type edgeBody struct {
		Type   string         `json:"type" validate:"required"`
		FromID string         `json:"from_id" validate:"required"`
		ToID   string         `json:"to_id" validate:"required"`
		Props  map[string]any `json:"props"`
	}

	type createEdgesBody struct {
		Edges []edgeBody `json:"edges" validate:"required,min=1,dive"`
	}

	type createEdgesResponse struct {
		Status  string        `json:"status"`
		Count   int           `json:"count"`
		Created int           `json:"created"`
		Edges   []common.Edge `json:"edges"`
	}

	data := new(createEdgesBody)
	if err := c.Bind(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	for _, e := range data.Edges {
		if !common.EdgeType(e.Type).Valid() {
			return errorJSON(c, http.StatusBadRequest, "Invalid edge type: "+e.Type)
		}
	}

	ctx := c.Request().Context()
	s := c.(*middleware.AppContext).App.Store

	res := createEdgesResponse{Status: "success", Edges: make([]common.Edge, 0, len(data.Edges))}
	for _, e := range data.Edges {
		edge := graph.NewEdge(common.EdgeType(e.Type), e.FromID, e.ToID)
		edge.Props = e.Props
		created, err := s.MergeEdge(ctx, edge)
		if err != nil {
			return storeError(c, err)
		}
		if created {
			res.Created++
		}
		res.Edges = append(res.Edges, edge)
	}
	res.Count = len(res.Edges)

	logger.Info("[Server] Edges written", "count", res.Count, "created", res.Created)
	return c.JSON(http.StatusOK, res)
}

func DeleteNodeHandler(c echo.Context) error {
	params := new(idParams)
	if err := c.Bind(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}

	s := c.(*middleware.AppContext).App.Store
	if err := s.DeleteNode(c.Request().Context(), params.ID); err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "success", "deleted": params.ID})
}

func DeleteEdgeHandler(c echo.Context) error {
	params := new(idParams)
	if err := c.Bind(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}

	s := c.(*middleware.AppContext).App.Store
	if err := s.DeleteEdge(c.Request().Context(), params.ID); err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "success", "deleted": params.ID})
}

// GetNodeTraceHandler returns the fragments a node was extracted from.
func GetNodeTraceHandler(c echo.Context) error {
	type traceResponse struct {
		NodeID string            `json:"node_id"`
		Traces []common.Fragment `json:"traces"`
	}

	params := new(idParams)
	if err := c.Bind(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}

	s := c.(*middleware.AppContext).App.Store
	traces, err := s.GetNodeTrace(c.Request().Context(), params.ID)
	if err != nil {
		return storeError(c, err)
	}
	if traces == nil {
		traces = []common.Fragment{}
	}

	return c.JSON(http.StatusOK, traceResponse{NodeID: params.ID, Traces: traces})
}

// GetClusterCandidatesHandler proposes microservice candidates from the
// aggregate connectivity of a document.
func GetClusterCandidatesHandler(c echo.Context) error {
	type clustersResponse struct {
		Clusters []common.Cluster `json:"clusters"`
	}

	params := new(docParams)
	if err := c.Bind(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}

	s := c.(*middleware.AppContext).App.Store
	clusters, err := graph.RecommendClusters(c.Request().Context(), s, params.DocID)
	if err != nil {
		return storeError(c, err)
	}
	if clusters == nil {
		clusters = []common.Cluster{}
	}

	return c.JSON(http.StatusOK, clustersResponse{Clusters: clusters})
}
