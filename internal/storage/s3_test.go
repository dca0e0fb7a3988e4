package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestIsPreconditionFailed(t *testing.T) {
	failed := &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	assert.True(t, isPreconditionFailed(fmt.Errorf("operation error S3: PutObject: %w", failed)))
	assert.True(t, isPreconditionFailed(&smithy.GenericAPIError{Code: "ConditionalRequestConflict"}))
	assert.False(t, isPreconditionFailed(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isPreconditionFailed(errors.New("dial tcp: timeout")))
}

func TestURL(t *testing.T) {
	s := NewS3Store(aws.Config{Region: "eu-west-1"}, "photos", "")
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/a.jpg", s.URL("a.jpg"))

	custom := NewS3Store(aws.Config{Region: "ru-1"}, "photos", "https://s3.example.com/")
	assert.Equal(t, "https://s3.example.com/photos/a.jpg", custom.URL("a.jpg"))
}
