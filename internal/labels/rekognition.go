package labels

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

const (
	maxLabels     = 20
	minConfidence = 70
)

// Detector extracts labels from images stored in a bucket
type Detector struct {
	client *rekognition.Client
	bucket string
}

// NewDetector creates a label detector for objects in bucket
func NewDetector(cfg aws.Config, bucket string) *Detector {
	return &Detector{client: rekognition.NewFromConfig(cfg), bucket: bucket}
}

// DetectLabels returns the raw label names detected in the object under key
func (d *Detector) DetectLabels(ctx context.Context, key string) ([]string, error) {
	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(d.bucket),
				Name:   aws.String(key),
			},
		},
		MaxLabels:     aws.Int32(maxLabels),
		MinConfidence: aws.Float32(minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect labels: %w", err)
	}

	names := make([]string, 0, len(out.Labels))
	for _, label := range out.Labels {
		if label.Name != nil {
			names = append(names, *label.Name)
		}
	}
	return names, nil
}

// Normalize lowercases names and keeps only ASCII letters.
// Names that become empty are dropped and duplicates collapse, so the result is a sorted set.
func Normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	tags := make([]string, 0, len(names))
	for _, name := range names {
		var b strings.Builder
		for _, r := range strings.ToLower(name) {
			if r >= 'a' && r <= 'z' {
				b.WriteRune(r)
			}
		}
		tag := b.String()
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
