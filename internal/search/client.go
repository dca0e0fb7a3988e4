package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudsearchdomain"
	"github.com/aws/aws-sdk-go-v2/service/cloudsearchdomain/types"
)

const (
	// scanSize is the largest page the search domain returns
	scanSize = 10000

	locationField = "google_location_id"
	noFields      = "_no_fields"
)

// Client talks to the photo search domain
type Client struct {
	api            *cloudsearchdomain.Client
	sortExpression string
}

// NewClient creates a search client for the domain at endpoint
func NewClient(cfg aws.Config, endpoint, sortExpression string) *Client {
	api := cloudsearchdomain.NewFromConfig(cfg, func(o *cloudsearchdomain.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &Client{api: api, sortExpression: sortExpression}
}

// SearchPhotos runs a structured search sorted by the domain's ranking expression
func (c *Client) SearchPhotos(ctx context.Context, req Request) ([]Hit, error) {
	input := &cloudsearchdomain.SearchInput{
		Query:       aws.String(req.Query),
		QueryParser: types.QueryParserStructured,
		FilterQuery: aws.String(req.FilterQuery),
		Size:        aws.Int64(int64(req.Size)),
		Start:       aws.Int64(int64(req.Start)),
		Sort:        aws.String(c.sortExpression + " desc"),
	}
	if req.IDsOnly {
		input.Return = aws.String(noFields)
	}

	out, err := c.api.Search(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to search photos: %w", err)
	}
	return toHits(out), nil
}

// LocationIDs returns the distinct location ids of indexed photos, skipping exclude
func (c *Client) LocationIDs(ctx context.Context, exclude []string) ([]string, error) {
	query := matchAll
	if len(exclude) > 0 {
		quoted := make([]string, len(exclude))
		for i, id := range exclude {
			quoted[i] = locationField + ":" + quote(id)
		}
		query = "(not (or " + strings.Join(quoted, " ") + "))"
	}

	out, err := c.api.Search(ctx, &cloudsearchdomain.SearchInput{
		Query:       aws.String(query),
		QueryParser: types.QueryParserStructured,
		Size:        aws.Int64(scanSize),
		Return:      aws.String(locationField),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, hit := range toHits(out) {
		for _, id := range hit.Fields[locationField] {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// AllIDs returns up to one page of every indexed document id
func (c *Client) AllIDs(ctx context.Context) ([]string, error) {
	out, err := c.api.Search(ctx, &cloudsearchdomain.SearchInput{
		Query:       aws.String(matchAll),
		QueryParser: types.QueryParserStructured,
		Size:        aws.Int64(scanSize),
		Return:      aws.String(noFields),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	hits := toHits(out)
	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Upload sends a batch of add and delete documents
func (c *Client) Upload(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	body, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}

	_, err = c.api.UploadDocuments(ctx, &cloudsearchdomain.UploadDocumentsInput{
		ContentType: types.ContentTypeApplicationJson,
		Documents:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("failed to upload documents: %w", err)
	}
	return nil
}

func toHits(out *cloudsearchdomain.SearchOutput) []Hit {
	if out == nil || out.Hits == nil {
		return nil
	}
	hits := make([]Hit, 0, len(out.Hits.Hit))
	for _, h := range out.Hits.Hit {
		hits = append(hits, Hit{ID: aws.ToString(h.Id), Fields: h.Fields})
	}
	return hits
}
