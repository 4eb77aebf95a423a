package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relieflink/pkg/types"
)

type memObjects struct {
	objects map[string][]byte
	getErr  error
}

func (m *memObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	raw, ok := m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(raw))}, nil
}

func (m *memObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = raw
	return &s3.PutObjectOutput{}, nil
}

func TestReferenceSnapshot_SaveLoad(t *testing.T) {
	api := &memObjects{}
	snap := NewReferenceSnapshot(api, "relief", "reference/relief.json")

	want := types.ReferenceData{
		Candidates: []types.ReferenceCandidate{{ID: "c1", Kind: types.SubmissionRequest, Category: types.CategoryWater, Lat: 23.7, Lng: 90.4, IsOpen: true}},
		Volunteers: []types.Volunteer{{ID: "v1", Name: "Rahim", VehicleType: types.VehicleBicycle, IsAvailable: true}},
	}
	require.NoError(t, snap.Save(context.Background(), want))

	got, err := snap.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Candidates[0].ID, got.Candidates[0].ID)
	assert.Equal(t, want.Volunteers[0].VehicleType, got.Volunteers[0].VehicleType)
	assert.Equal(t, "s3://relief/reference/relief.json", snap.Location())
}

func TestReferenceSnapshot_Missing(t *testing.T) {
	snap := NewReferenceSnapshot(&memObjects{}, "relief", "nope.json")

	_, err := snap.Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestReferenceSnapshot_Errors(t *testing.T) {
	snap := NewReferenceSnapshot(&memObjects{getErr: errors.New("access denied")}, "relief", "k")
	_, err := snap.Load(context.Background())
	assert.ErrorContains(t, err, "access denied")

	api := &memObjects{objects: map[string][]byte{"relief/k": []byte("not json")}}
	_, err = NewReferenceSnapshot(api, "relief", "k").Load(context.Background())
	assert.ErrorContains(t, err, "decode")
}
