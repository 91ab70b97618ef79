// Package qdrant implements the VectorIndex port over Qdrant's gRPC API.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"staylist/internal/domain"
)

type Index struct {
	collections pb.CollectionsClient
	points      pb.PointsClient
	collection  string
	conn        *grpc.ClientConn
}

func New(host string, port int, collection string) (*Index, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	return &Index{
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
		collection:  collection,
		conn:        conn,
	}, nil
}

func (ix *Index) Close() error {
	if ix.conn != nil {
		return ix.conn.Close()
	}
	return nil
}

// EnsureCollection creates the cosine-distance collection if absent.
func (ix *Index) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := ix.collections.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: ix.collection,
	})
	if err == nil {
		return nil
	}

	_, err = ix.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: ix.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// Upsert stores the hotel's embedding under its ID. The point carries no
// payload; projections are hydrated from the record store.
func (ix *Index) Upsert(ctx context.Context, id string, vector []float32) error {
	_, err := ix.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: ix.collection,
		Points: []*pb.PointStruct{
			{
				Id: &pb.PointId{
					PointIdOptions: &pb.PointId_Uuid{Uuid: id},
				},
				Vectors: &pb.Vectors{
					VectorsOptions: &pb.Vectors_Vector{
						Vector: &pb.Vector{Data: vector},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}
	return nil
}

// Search returns up to limit nearest neighbors. pool widens the HNSW search
// beam beyond the result count to recover recall lost to the approximate
// index; tie order within equal scores follows index iteration order.
func (ix *Index) Search(ctx context.Context, vector []float32, limit, pool int) ([]domain.VectorMatch, error) {
	if pool < limit {
		pool = limit
	}
	resp, err := ix.points.Search(ctx, &pb.SearchPoints{
		CollectionName: ix.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		Params: &pb.SearchParams{
			HnswEf: pb.PtrOf(uint64(pool)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	out := make([]domain.VectorMatch, 0, len(resp.Result))
	for _, p := range resp.Result {
		out = append(out, domain.VectorMatch{
			ID:    p.Id.GetUuid(),
			Score: p.Score,
		})
	}
	return out, nil
}

func (ix *Index) Delete(ctx context.Context, id string) error {
	_, err := ix.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: ix.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}
