// Package graphql exposes the dashboard aggregates as a read-only GraphQL schema.
package graphql

import (
	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/services/posture"
	"github.com/graphql-go/graphql"
)

func QueryFields(aggregator posture.Aggregator) graphql.Fields {
	return graphql.Fields{
		"posture": &graphql.Field{
			Type: SecurityPostureType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				res, err := aggregator.Posture(p.Context)
				if err != nil {
					return nil, err
				}
				return adapters.MapPostureDomainToApi(res), nil
			},
		},
		"stats": &graphql.Field{
			Type: DashboardStatsType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				res, err := aggregator.Stats(p.Context)
				if err != nil {
					return nil, err
				}
				return adapters.MapStatsDomainToApi(res), nil
			},
		},
	}
}

func NewSchema(aggregator posture.Aggregator) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: QueryFields(aggregator),
		}),
	})
}
