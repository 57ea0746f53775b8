package redis

import (
	"context"
	"strconv"

	"github.com/askdex/askdex/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH"}

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		f := &idx.Fields[i]
		args = append(args, f.Name)

		switch f.Type {
		case db.IndexFieldTag:
			args = append(args, "TAG")
		case db.IndexFieldVector:
			algo := f.VectorAlgo
			if algo == "" {
				algo = db.VectorHNSW
			}
			metric := f.VectorDistance
			if metric == "" {
				metric = db.DistanceCosine
			}

			vectorArgs := []string{
				"TYPE", "FLOAT32",
				"DIM", strconv.Itoa(f.VectorDim),
				"DISTANCE_METRIC", string(metric),
			}
			if algo == db.VectorHNSW {
				if f.VectorM > 0 {
					vectorArgs = append(vectorArgs, "M", strconv.Itoa(f.VectorM))
				}
				if f.VectorEFConstruct > 0 {
					vectorArgs = append(vectorArgs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
				}
			}

			args = append(args, "VECTOR", string(algo), strconv.Itoa(len(vectorArgs)))
			args = append(args, vectorArgs...)
		}
	}

	return args, nil
}
