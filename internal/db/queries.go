package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/Ekats/mycelica-layout/internal/models"
)

// nodeRow is the raw node table row shape.
type nodeRow struct {
	ID            surrealmodels.RecordID `json:"id"`
	Title         string                 `json:"title"`
	IsPersonal    bool                   `json:"is_personal"`
	IsItem        bool                   `json:"is_item"`
	Author        *string                `json:"author"`
	ContentType   *string                `json:"content_type"`
	Source        *string                `json:"source"`
	SequenceIndex *int64                 `json:"sequence_index"`
	Tags          *string                `json:"tags"`
	Content       *string                `json:"content"`
}

// edgeRow is the raw connects relation row shape.
type edgeRow struct {
	ID         surrealmodels.RecordID `json:"id"`
	In         surrealmodels.RecordID `json:"in"`
	Out        surrealmodels.RecordID `json:"out"`
	EdgeType   string                 `json:"edge_type"`
	Weight     *float64               `json:"weight"`
	IsPersonal bool                   `json:"is_personal"`
	EdgeSource *string                `json:"edge_source"`
}

// positionRow is the raw position table row shape.
type positionRow struct {
	ID surrealmodels.RecordID `json:"id"`
	X  float64                `json:"x"`
	Y  float64                `json:"y"`
}

// recordIDString safely extracts the string part of a SurrealDB RecordID.
func recordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

func (r nodeRow) toDisplayNode() (models.DisplayNode, error) {
	id, err := recordIDString(r.ID)
	if err != nil {
		return models.DisplayNode{}, err
	}
	return models.DisplayNode{
		ID:            id,
		Title:         r.Title,
		IsPersonal:    r.IsPersonal,
		IsItem:        r.IsItem,
		Author:        r.Author,
		ContentType:   r.ContentType,
		Source:        r.Source,
		SequenceIndex: r.SequenceIndex,
		Tags:          r.Tags,
		Content:       r.Content,
	}, nil
}

func (r edgeRow) toDisplayEdge() (models.DisplayEdge, error) {
	id, err := recordIDString(r.ID)
	if err != nil {
		return models.DisplayEdge{}, err
	}
	src, err := recordIDString(r.In)
	if err != nil {
		return models.DisplayEdge{}, err
	}
	dst, err := recordIDString(r.Out)
	if err != nil {
		return models.DisplayEdge{}, err
	}
	return models.DisplayEdge{
		ID:         id,
		SourceID:   src,
		TargetID:   dst,
		EdgeType:   r.EdgeType,
		Weight:     r.Weight,
		IsPersonal: r.IsPersonal,
		EdgeSource: r.EdgeSource,
	}, nil
}

// ListNodes returns all display nodes ordered by sequence index then ID
// so repeated loads produce the same node order.
func (c *Client) ListNodes(ctx context.Context) ([]models.DisplayNode, error) {
	results, err := surrealdb.Query[[]nodeRow](ctx, c.db, `
		SELECT * FROM node ORDER BY sequence_index, id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.DisplayNode{}, nil
	}

	rows := (*results)[0].Result
	nodes := make([]models.DisplayNode, 0, len(rows))
	for _, r := range rows {
		n, err := r.toDisplayNode()
		if err != nil {
			return nil, fmt.Errorf("list nodes: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ListEdges returns all typed edges ordered by ID.
func (c *Client) ListEdges(ctx context.Context) ([]models.DisplayEdge, error) {
	results, err := surrealdb.Query[[]edgeRow](ctx, c.db, `
		SELECT * FROM connects ORDER BY id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.DisplayEdge{}, nil
	}

	rows := (*results)[0].Result
	edges := make([]models.DisplayEdge, 0, len(rows))
	for _, r := range rows {
		e, err := r.toDisplayEdge()
		if err != nil {
			return nil, fmt.Errorf("list edges: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// GetNode retrieves a node by ID. Returns nil if not found.
func (c *Client) GetNode(ctx context.Context, id string) (*models.DisplayNode, error) {
	results, err := surrealdb.Query[[]nodeRow](ctx, c.db, `
		SELECT * FROM type::record("node", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	n, err := (*results)[0].Result[0].toDisplayNode()
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	return &n, nil
}

// UpsertNode creates or updates a node by ID and returns the stored row.
func (c *Client) UpsertNode(ctx context.Context, n models.DisplayNode) (*models.DisplayNode, error) {
	sql := `
		UPSERT type::record("node", $id) SET
			title = $title,
			is_personal = $is_personal,
			is_item = $is_item,
			author = $author,
			content_type = $content_type,
			source = $source,
			sequence_index = $sequence_index,
			tags = $tags,
			content = $content
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]nodeRow](ctx, c.db, sql, map[string]any{
		"id":             n.ID,
		"title":          n.Title,
		"is_personal":    n.IsPersonal,
		"is_item":        n.IsItem,
		"author":         n.Author,
		"content_type":   n.ContentType,
		"source":         n.Source,
		"sequence_index": n.SequenceIndex,
		"tags":           n.Tags,
		"content":        n.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert node: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("upsert node: no result returned")
	}
	stored, err := (*results)[0].Result[0].toDisplayNode()
	if err != nil {
		return nil, fmt.Errorf("upsert node: %w", err)
	}
	return &stored, nil
}

// DeleteNode deletes a node by ID. The TYPE RELATION schema on connects
// cascades edge deletion. Returns true if a node was deleted.
func (c *Client) DeleteNode(ctx context.Context, id string) (bool, error) {
	results, err := surrealdb.Query[[]nodeRow](ctx, c.db, `
		DELETE type::record("node", $id) RETURN BEFORE
	`, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete node: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return false, nil
	}
	return len((*results)[0].Result) > 0, nil
}

// CreateEdge creates a typed edge between two nodes. RELATE upserts via the
// unique_key index so repeated calls do not duplicate edges.
// Returns ErrNotFound if either endpoint is missing.
func (c *Client) CreateEdge(ctx context.Context, e models.DisplayEdge) error {
	sql := `
		LET $from_exists = (SELECT count() AS c FROM type::record("node", $from_id)).c > 0;
		LET $to_exists = (SELECT count() AS c FROM type::record("node", $to_id)).c > 0;

		IF !$from_exists OR !$to_exists {
			THROW "node not found"
		};

		RELATE type::record("node", $from_id)->connects->type::record("node", $to_id) SET
			edge_type = $edge_type,
			weight = $weight,
			is_personal = $is_personal,
			edge_source = $edge_source;
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"from_id":     e.SourceID,
		"to_id":       e.TargetID,
		"edge_type":   e.EdgeType,
		"weight":      e.Weight,
		"is_personal": e.IsPersonal,
		"edge_source": e.EdgeSource,
	})
	if err != nil {
		return fmt.Errorf("create edge: %w", wrapQueryError(err))
	}
	return nil
}

// DeleteEdge removes an edge of the given type between two nodes.
func (c *Client) DeleteEdge(ctx context.Context, fromID, toID, edgeType string) error {
	sql := `
		DELETE connects
		WHERE in = type::record("node", $from_id)
			AND out = type::record("node", $to_id)
			AND edge_type = $edge_type
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"from_id":   fromID,
		"to_id":     toID,
		"edge_type": edgeType,
	})
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	return nil
}

// SavePosition stores a user-pinned position for a node.
func (c *Client) SavePosition(ctx context.Context, nodeID string, pos models.Position) error {
	sql := `
		UPSERT type::record("position", $id) SET
			x = $x,
			y = $y,
			updated = time::now()
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id": nodeID,
		"x":  pos.X,
		"y":  pos.Y,
	})
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// DeletePosition removes a saved position. Returns true if one existed.
func (c *Client) DeletePosition(ctx context.Context, nodeID string) (bool, error) {
	results, err := surrealdb.Query[[]positionRow](ctx, c.db, `
		DELETE type::record("position", $id) RETURN BEFORE
	`, map[string]any{"id": nodeID})
	if err != nil {
		return false, fmt.Errorf("delete position: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return false, nil
	}
	return len((*results)[0].Result) > 0, nil
}

// LoadPositions returns all saved positions keyed by node ID.
func (c *Client) LoadPositions(ctx context.Context) (map[string]models.Position, error) {
	results, err := surrealdb.Query[[]positionRow](ctx, c.db, `
		SELECT * FROM position
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}

	positions := make(map[string]models.Position)
	if results == nil || len(*results) == 0 {
		return positions, nil
	}
	for _, r := range (*results)[0].Result {
		id, err := recordIDString(r.ID)
		if err != nil {
			return nil, fmt.Errorf("load positions: %w", err)
		}
		positions[id] = models.Position{X: r.X, Y: r.Y}
	}
	return positions, nil
}

// ClearPositions deletes all saved positions.
func (c *Client) ClearPositions(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, c.db, `DELETE position`, nil); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	return nil
}
