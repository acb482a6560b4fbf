package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosminvladulescu/bcon-site/errs"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":       "9090",
		"BAD_INT":    "abc",
		"FLAG":       "true",
		"BAD_FLAG":   "maybe",
		"TTL":        "2h",
		"TTL_SECS":   "90",
		"ORIGINS":    " https://a.ro, ,https://b.ro ",
		"EMPTY":      "",
	}

	assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
	assert.Equal(t, "8080", GetString(c, "MISSING", "8080"))
	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, "x", GetString(nil, "PORT", "x"))

	assert.Equal(t, 9090, GetInt(c, "PORT", 1))
	assert.Equal(t, 1, GetInt(c, "BAD_INT", 1))

	assert.True(t, GetBool(c, "FLAG", false))
	assert.True(t, GetBool(c, "BAD_FLAG", true))
	assert.False(t, GetBool(c, "MISSING", false))

	assert.Equal(t, 2*time.Hour, GetDuration(c, "TTL", time.Minute))
	assert.Equal(t, 90*time.Second, GetDuration(c, "TTL_SECS", time.Minute))
	assert.Equal(t, time.Minute, GetDuration(c, "MISSING", time.Minute))

	assert.Equal(t, []string{"https://a.ro", "https://b.ro"}, GetStrings(c, "ORIGINS"))
	assert.Nil(t, GetStrings(c, "MISSING"))
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("BCON_TEST_KEY", "a=b")

	c := New()
	assert.Equal(t, "a=b", c["BCON_TEST_KEY"])
}

func TestMergePrefersBase(t *testing.T) {
	merged := Merge(
		map[string]string{"JWT_SECRET": "env"},
		map[string]string{"JWT_SECRET": "ssm", "RESEND_API_KEY": "re_123"},
	)

	assert.Equal(t, "env", merged["JWT_SECRET"])
	assert.Equal(t, "re_123", merged["RESEND_API_KEY"])
}

type fakeSSM struct {
	pages [][]types.Parameter
	err   error
	calls int
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	idx := 0
	if in.NextToken != nil {
		idx = len(aws.ToString(in.NextToken))
	}
	out := &ssm.GetParametersByPathOutput{Parameters: f.pages[idx]}
	if idx+1 < len(f.pages) {
		// token length encodes the next page index
		token := ""
		for i := 0; i <= idx; i++ {
			token += "x"
		}
		out.NextToken = aws.String(token)
	}
	return out, nil
}

func TestFetchParameters(t *testing.T) {
	client := &fakeSSM{pages: [][]types.Parameter{
		{
			{Name: aws.String("/bcon/prod/jwt-secret"), Value: aws.String("s3cr3t")},
			{Name: aws.String("/bcon/prod/resend.api-key"), Value: aws.String("re_1")},
		},
		{
			{Name: aws.String("/bcon/prod/nested/PORT"), Value: aws.String("9000")},
			{Name: nil, Value: aws.String("ignored")},
		},
	}}

	params, err := FetchParameters(context.Background(), client, "/bcon/prod")
	require.NoError(t, err)

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, map[string]string{
		"JWT_SECRET":     "s3cr3t",
		"RESEND_API_KEY": "re_1",
		"PORT":           "9000",
	}, params)
}

func TestFetchParametersError(t *testing.T) {
	client := &fakeSSM{err: errors.New("access denied")}

	_, err := FetchParameters(context.Background(), client, "/bcon/prod")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfigMissing)
}
