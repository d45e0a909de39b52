package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func ListCollectionIndexes(ctx context.Context, collection *mongo.Collection) ([]bson.M, error) {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == 26 {
			return []bson.M{}, nil
		}
		return nil, err
	}
	defer cursor.Close(ctx)

	indexes := []bson.M{}
	if err = cursor.All(ctx, &indexes); err != nil {
		return nil, err
	}
	return indexes, nil
}

type IndexInfo struct {
	Name   string
	Keys   string
	Unique bool
}

// DescribeIndexes turns index specs as returned by ListCollectionIndexes into
// name, keys and uniqueness.
func DescribeIndexes(indexes []bson.M) []IndexInfo {
	infos := make([]IndexInfo, 0, len(indexes))
	for _, index := range indexes {
		info := IndexInfo{}
		info.Name, _ = index["name"].(string)
		info.Unique, _ = index["unique"].(bool)

		switch keys := index["key"].(type) {
		case bson.D:
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, fmt.Sprintf("%s:%v", k.Key, k.Value))
			}
			info.Keys = strings.Join(parts, ",")
		case bson.M:
			parts := make([]string, 0, len(keys))
			for k, v := range keys {
				parts = append(parts, fmt.Sprintf("%s:%v", k, v))
			}
			sort.Strings(parts)
			info.Keys = strings.Join(parts, ",")
		}
		infos = append(infos, info)
	}
	return infos
}
