package config

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/errs"
)

// Load reads .env, the process environment and, when SSM_PARAMETER_PATH is set,
// every parameter stored under that path in AWS SSM Parameter Store.
// The process environment always takes precedence over SSM values.
func Load(ctx context.Context) (map[string]string, error) {
	LoadDotEnv()
	env := New()

	prefix := GetString(env, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return env, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errs.NewConfigError("aws", err)
	}

	params, err := FetchParameters(ctx, ssm.NewFromConfig(awsCfg), prefix)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", prefix).Int("count", len(params)).Msg("Loaded parameters from SSM")

	return Merge(env, params), nil
}

// FetchParameters lists every parameter below prefix. /bcon/prod/jwt-secret
// becomes JWT_SECRET.
func FetchParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, prefix string) (map[string]string, error) {
	out := make(map[string]string)

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errs.NewConfigError("ssm "+prefix, err)
		}
		for _, p := range page.Parameters {
			name := aws.ToString(p.Name)
			if name == "" {
				continue
			}
			out[parameterKey(name)] = aws.ToString(p.Value)
		}
	}

	return out, nil
}

func parameterKey(name string) string {
	key := strings.ToUpper(path.Base(name))
	return strings.NewReplacer("-", "_", ".", "_").Replace(key)
}
