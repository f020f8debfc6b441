package mainconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
)

func TestEndpointOverride(t *testing.T) {
	r := endpointOverride("http://localhost:4566", "ca-central-1")

	ep, err := r.ResolveEndpoint(sqs.ServiceID, "ca-central-1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566", ep.URL)
	assert.Equal(t, "ca-central-1", ep.SigningRegion)
	assert.False(t, ep.HostnameImmutable)

	ep, err = r.ResolveEndpoint(s3.ServiceID, "ca-central-1")
	require.NoError(t, err)
	assert.True(t, ep.HostnameImmutable)

	_, err = r.ResolveEndpoint("Kinesis", "ca-central-1")
	var notFound *aws.EndpointNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:           "ca-central-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "secret",
		AWSEndpointOverride: "http://localhost:4566",
	}
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ca-central-1", awsCfg.Region)
	require.NotNil(t, awsCfg.EndpointResolverWithOptions)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestLoadOptionalAWSConfigSkipsWhenUnused(t *testing.T) {
	awsCfg, err := LoadOptionalAWSConfig(context.Background(), &appconfig.Config{AWSRegion: "ca-central-1"})
	require.NoError(t, err)
	assert.Nil(t, awsCfg)
}
