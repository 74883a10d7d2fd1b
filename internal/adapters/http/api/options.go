package api

import "github.com/okian/appraise/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed by CORS. Empty keeps the default
// of any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithMaxBodyBytes caps the size of submission bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
