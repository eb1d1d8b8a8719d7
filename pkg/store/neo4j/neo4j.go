package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// nodeLabel is carried by every node in addition to its type label so that
// id lookups can use a single uniqueness constraint.
const nodeLabel = "Node"

const fragmentBatchSize = 200

// GraphDBStorage implements store.GraphStorage on Neo4j.
type GraphDBStorage struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ store.GraphStorage = (*GraphDBStorage)(nil)

type NewGraphDBStorageParams struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// NewGraphDBStorage connects to Neo4j, verifies connectivity and creates the
// schema constraints. The caller falls back to store.NewUnavailable on error.
func NewGraphDBStorage(ctx context.Context, params NewGraphDBStorageParams) (*GraphDBStorage, error) {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxPool := params.MaxPoolSize
	if maxPool <= 0 {
		maxPool = 50
	}

	auth := neo4j.BasicAuth(params.User, params.Password, "")
	driver, err := neo4j.NewDriverWithContext(params.URI, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	s := &GraphDBStorage{driver: driver, database: params.Database}
	s.initSchema(ctx)
	return s, nil
}

func (s *GraphDBStorage) initSchema(ctx context.Context) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT node_id_unique IF NOT EXISTS FOR (n:Node) REQUIRE n.id IS UNIQUE`,
		`CREATE CONSTRAINT aggregate_id_unique IF NOT EXISTS FOR (n:Aggregate) REQUIRE n.id IS UNIQUE`,
		`CREATE CONSTRAINT command_id_unique IF NOT EXISTS FOR (n:Command) REQUIRE n.id IS UNIQUE`,
		`CREATE CONSTRAINT event_id_unique IF NOT EXISTS FOR (n:Event) REQUIRE n.id IS UNIQUE`,
		`CREATE CONSTRAINT policy_id_unique IF NOT EXISTS FOR (n:Policy) REQUIRE n.id IS UNIQUE`,
		`CREATE INDEX node_doc_id IF NOT EXISTS FOR (n:Node) ON (n.doc_id)`,
		`CREATE INDEX docfrag_doc_page IF NOT EXISTS FOR (f:DocFrag) ON (f.doc_id, f.page)`,
	}
	for _, q := range stmts {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			logger.Warn("[Neo4j] Schema init failed, continuing", "err", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func (s *GraphDBStorage) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

func (s *GraphDBStorage) write(ctx context.Context, fn neo4j.ManagedTransactionWork) (any, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, fn)
}

func (s *GraphDBStorage) read(ctx context.Context, fn neo4j.ManagedTransactionWork) (any, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, fn)
}

func (s *GraphDBStorage) Status() store.Status {
	if s.driver == nil {
		return store.StatusDisconnected
	}
	return store.StatusConnected
}

func (s *GraphDBStorage) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return err
}

func nodeTypeLabel(t common.ConceptType) (string, error) {
	switch t {
	case common.ConceptAggregate, common.ConceptCommand, common.ConceptEvent, common.ConceptPolicy, common.ConceptFragment:
		return string(t), nil
	}
	return "", fmt.Errorf("unknown node type %q", t)
}

func relTypes(types []common.EdgeType) (string, error) {
	names := make([]string, 0, len(types))
	for _, t := range types {
		if !t.Valid() {
			return "", fmt.Errorf("unknown edge type %q", t)
		}
		names = append(names, string(t))
	}
	return strings.Join(names, "|"), nil
}

func typeNames[T ~string](types []T) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

func (s *GraphDBStorage) SaveFragments(ctx context.Context, fragments []common.Fragment) error {
	rows := make([]map[string]any, 0, len(fragments))
	for _, f := range fragments {
		rows = append(rows, map[string]any{
			"id":     f.ID,
			"doc_id": f.DocID,
			"type":   string(common.ConceptFragment),
			"name":   f.ID,
			"page":   f.Page,
			"start":  f.Start,
			"end":    f.End,
			"text":   f.Text,
		})
	}

	return store.ChunkRange(len(rows), fragmentBatchSize, func(start, end int) error {
		_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, `
UNWIND $frags AS f
MERGE (n:Node:DocFrag {id: f.id})
SET n += f
`, map[string]any{"frags": rows[start:end]})
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("save fragments: %w", err)
		}
		return nil
	})
}

func (s *GraphDBStorage) GetFragments(ctx context.Context, docID string, limit int) ([]common.Fragment, error) {
	query := `
MATCH (f:DocFrag {doc_id: $doc_id})
RETURN f.id AS id, f.doc_id AS doc_id, f.page AS page, f.start AS start, f.end AS end, f.text AS text
ORDER BY f.page, f.start`
	params := map[string]any{"doc_id": docID}
	if limit > 0 {
		query += "\nLIMIT $limit"
		params["limit"] = limit
	}

	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		fragments := []common.Fragment{}
		for res.Next(ctx) {
			fragments = append(fragments, fragmentFromRecord(res.Record()))
		}
		return fragments, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get fragments: %w", err)
	}
	return out.([]common.Fragment), nil
}

func (s *GraphDBStorage) GetNodeTrace(ctx context.Context, nodeID string) ([]common.Fragment, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (n:Node {id: $id})
OPTIONAL MATCH (n)-[:DERIVED_FROM]->(f:DocFrag)
RETURN f.id AS id, f.doc_id AS doc_id, f.page AS page, f.start AS start, f.end AS end, f.text AS text
ORDER BY f.page, f.start`, map[string]any{"id": nodeID})
		if err != nil {
			return nil, err
		}
		found := false
		fragments := []common.Fragment{}
		for res.Next(ctx) {
			found = true
			record := res.Record()
			if getString(record, "id") == "" {
				continue
			}
			fragments = append(fragments, fragmentFromRecord(record))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", store.ErrNodeNotFound, nodeID)
		}
		return fragments, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get node trace: %w", err)
	}
	return out.([]common.Fragment), nil
}

func (s *GraphDBStorage) UpsertNode(ctx context.Context, node common.Node) error {
	label, err := nodeTypeLabel(node.Type)
	if err != nil {
		return err
	}

	props := make(map[string]any, len(node.Props))
	for k, v := range node.Props {
		props[k] = v
	}

	query := fmt.Sprintf(`
MERGE (n:%s:%s {id: $id})
ON CREATE SET n.created_at = $now
SET n += $props, n.doc_id = $doc_id, n.name = $name, n.type = $type
`, nodeLabel, label)

	_, err = s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"id":     node.ID,
			"doc_id": node.DocID,
			"name":   node.Name,
			"type":   string(node.Type),
			"props":  props,
			"now":    time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("upsert node %s: %w", node.ID, err)
	}
	return nil
}

func (s *GraphDBStorage) MergeEdge(ctx context.Context, edge common.Edge) (bool, error) {
	if !edge.Type.Valid() {
		return false, fmt.Errorf("unknown edge type %q", edge.Type)
	}

	props := make(map[string]any, len(edge.Props))
	for k, v := range edge.Props {
		props[k] = v
	}

	query := fmt.Sprintf(`
MATCH (a:%[1]s {id: $from_id}), (b:%[1]s {id: $to_id})
WHERE a.doc_id = b.doc_id
MERGE (a)-[r:%[2]s]->(b)
ON CREATE SET r.id = $id, r.created_at = $now, r += $props
RETURN r.id AS id
`, nodeLabel, edge.Type)

	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"from_id": edge.FromID,
			"to_id":   edge.ToID,
			"id":      edge.ID,
			"props":   props,
			"now":     time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s -[%s]-> %s", store.ErrEndpointMissing, edge.FromID, edge.Type, edge.ToID)
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summary.Counters().RelationshipsCreated() > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("merge edge %s: %w", edge.ID, err)
	}
	return out.(bool), nil
}

const nodeReturn = `n.id AS id, n.doc_id AS doc_id, n.type AS type, n.name AS name, properties(n) AS props`

func (s *GraphDBStorage) GetNode(ctx context.Context, id string) (common.Node, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n:Node {id: $id}) RETURN `+nodeReturn, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s", store.ErrNodeNotFound, id)
		}
		return nodeFromRecord(res.Record()), nil
	})
	if err != nil {
		return common.Node{}, fmt.Errorf("get node: %w", err)
	}
	return out.(common.Node), nil
}

func (s *GraphDBStorage) GetNodes(ctx context.Context, docID string, types []common.ConceptType) ([]common.Node, error) {
	query := `MATCH (n:Node {doc_id: $doc_id})`
	params := map[string]any{"doc_id": docID}
	if len(types) > 0 {
		query += ` WHERE n.type IN $types`
		params["types"] = typeNames(types)
	}
	query += ` RETURN ` + nodeReturn + ` ORDER BY n.created_at, n.id`

	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		nodes := []common.Node{}
		for res.Next(ctx) {
			nodes = append(nodes, nodeFromRecord(res.Record()))
		}
		return nodes, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get nodes: %w", err)
	}
	return out.([]common.Node), nil
}

func (s *GraphDBStorage) GetEdges(ctx context.Context, docID string, types []common.EdgeType) ([]common.Edge, error) {
	query := `MATCH (a:Node {doc_id: $doc_id})-[r]->(b:Node {doc_id: $doc_id})`
	params := map[string]any{"doc_id": docID}
	if len(types) > 0 {
		query += ` WHERE type(r) IN $types`
		params["types"] = typeNames(types)
	}
	query += `
RETURN r.id AS id, type(r) AS type, a.id AS from_id, b.id AS to_id, properties(r) AS props
ORDER BY r.created_at, r.id`

	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		edges := []common.Edge{}
		for res.Next(ctx) {
			record := res.Record()
			props := getMap(record, "props")
			delete(props, "id")
			edges = append(edges, common.Edge{
				ID:     getString(record, "id"),
				Type:   common.EdgeType(getString(record, "type")),
				FromID: getString(record, "from_id"),
				ToID:   getString(record, "to_id"),
				Props:  props,
			})
		}
		return edges, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get edges: %w", err)
	}
	return out.([]common.Edge), nil
}

func (s *GraphDBStorage) DeleteNode(ctx context.Context, id string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n:Node {id: $id}) DETACH DELETE n`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, fmt.Errorf("%w: %s", store.ErrNodeNotFound, id)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	return nil
}

func (s *GraphDBStorage) DeleteEdge(ctx context.Context, id string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (:Node)-[r {id: $id}]->(:Node) DELETE r`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().RelationshipsDeleted() == 0 {
			return nil, fmt.Errorf("%w: %s", store.ErrEdgeNotFound, id)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	return nil
}

func (s *GraphDBStorage) FindAggregateConnections(ctx context.Context, docID string, types []common.EdgeType, maxHops int) ([]store.AggregateConnections, error) {
	rels, err := relTypes(types)
	if err != nil {
		return nil, err
	}
	if maxHops < 1 {
		maxHops = 1
	}

	query := fmt.Sprintf(`
MATCH path = (a:Aggregate)-[:%s*1..%d]-(b:Aggregate)
WHERE a.doc_id = $doc_id AND b.doc_id = $doc_id AND a <> b
WITH a, b, path
WITH a, collect(DISTINCT b.name) AS connected, count(path) AS connections
WHERE size(connected) >= 1
RETURN a.name AS name, connected, connections
ORDER BY connections DESC`, rels, maxHops)

	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"doc_id": docID})
		if err != nil {
			return nil, err
		}
		var groups []store.AggregateConnections
		for res.Next(ctx) {
			record := res.Record()
			groups = append(groups, store.AggregateConnections{
				Name:        getString(record, "name"),
				Connected:   getStrings(record, "connected"),
				Connections: getInt(record, "connections"),
			})
		}
		return groups, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("find aggregate connections: %w", err)
	}
	return out.([]store.AggregateConnections), nil
}
