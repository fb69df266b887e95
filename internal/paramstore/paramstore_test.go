package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	values map[string]string
	err    error
	names  []string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.names = append(f.names, aws.ToString(in.Name))
	if f.err != nil {
		return nil, f.err
	}
	if !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("decryption not requested")
	}
	v, ok := f.values[aws.ToString(in.Name)]
	if !ok {
		return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name}}, nil
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func TestGet(t *testing.T) {
	api := &fakeSSM{values: map[string]string{"/climate-chat/gemini-api-key": "g-key"}}
	s, err := New(api, "/climate-chat/")
	require.NoError(t, err)

	v, err := s.Get(context.Background(), "gemini-api-key")
	require.NoError(t, err)
	require.Equal(t, "g-key", v)
	require.Equal(t, []string{"/climate-chat/gemini-api-key"}, api.names)
}

func TestGetMissingValue(t *testing.T) {
	s, err := New(&fakeSSM{}, "/climate-chat")
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "openweather-api-key")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetAPIError(t *testing.T) {
	s, err := New(&fakeSSM{err: errors.New("throttled")}, "/p")
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "k")
	require.ErrorContains(t, err, "throttled")
	require.ErrorContains(t, err, `"/p/k"`)
}

func TestGetValidation(t *testing.T) {
	s, err := New(&fakeSSM{}, "/p")
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "  ")
	require.ErrorContains(t, err, "required")

	var nilStore *Store
	_, err = nilStore.Get(context.Background(), "k")
	require.ErrorContains(t, err, "not initialized")

	_, err = New(nil, "/p")
	require.ErrorContains(t, err, "must not be nil")
}

func TestPath(t *testing.T) {
	s, _ := New(&fakeSSM{}, "")
	require.Equal(t, "/k", s.Path("k"))

	s, _ = New(&fakeSSM{}, "/app/prod/")
	require.Equal(t, "/app/prod/k", s.Path("/k"))
}
