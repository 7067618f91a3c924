package graphql

import "github.com/graphql-go/graphql"

var TrendPointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TrendPoint",
	Fields: graphql.Fields{
		"date":  &graphql.Field{Type: graphql.String},
		"value": &graphql.Field{Type: graphql.Float},
	},
})

// SecurityPostureType mirrors GET /api/dashboard/posture.
var SecurityPostureType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SecurityPosture",
	Fields: graphql.Fields{
		"overall_score":        &graphql.Field{Type: graphql.Float},
		"risk_level":           &graphql.Field{Type: graphql.String},
		"critical_alerts":      &graphql.Field{Type: graphql.Int},
		"open_vulnerabilities": &graphql.Field{Type: graphql.Int},
		"active_incidents":     &graphql.Field{Type: graphql.Int},
		"compliance_score":     &graphql.Field{Type: graphql.Float},
		"trend_data":           &graphql.Field{Type: graphql.NewList(TrendPointType)},
	},
})

var DashboardStatsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardStats",
	Fields: graphql.Fields{
		"total_vulnerabilities":    &graphql.Field{Type: graphql.Int},
		"critical_vulnerabilities": &graphql.Field{Type: graphql.Int},
		"open_incidents":           &graphql.Field{Type: graphql.Int},
		"critical_incidents":       &graphql.Field{Type: graphql.Int},
		"compliance_frameworks":    &graphql.Field{Type: graphql.Int},
		"compliant_frameworks":     &graphql.Field{Type: graphql.Int},
		"security_score":           &graphql.Field{Type: graphql.Float},
		"compliance_score":         &graphql.Field{Type: graphql.Float},
	},
})
