// Package paramstore reads provider credentials from AWS SSM Parameter Store.
package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the part of *ssm.Client the store needs.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ErrNotFound is returned when a parameter exists but carries no value.
var ErrNotFound = errors.New("paramstore: parameter has no value")

// Store resolves parameter names below a common prefix.
type Store struct {
	api    ssmAPI
	prefix string
}

// New wraps api. prefix is joined to every name with a single slash.
func New(api ssmAPI, prefix string) (*Store, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Store{api: api, prefix: strings.TrimRight(strings.TrimSpace(prefix), "/")}, nil
}

// NewFromEnvironment builds a Store backed by the default AWS credential chain.
func NewFromEnvironment(ctx context.Context, prefix string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("paramstore: load aws config: %w", err)
	}
	return New(ssm.NewFromConfig(cfg), prefix)
}

// Path returns the full parameter name for key.
func (s *Store) Path(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if s.prefix == "" {
		return "/" + key
	}
	return s.prefix + "/" + key
}

// Get returns the decrypted value of key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if s == nil || s.api == nil {
		return "", errors.New("paramstore: store not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return "", errors.New("paramstore: key is required")
	}

	name := s.Path(key)
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return *out.Parameter.Value, nil
}
