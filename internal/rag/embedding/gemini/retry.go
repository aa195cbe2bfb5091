package gemini

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// shouldRetry is true only for upstream rate limiting. Everything else is a
// straight EmbeddingError; the pipeline does not retry internally.
func shouldRetry(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
