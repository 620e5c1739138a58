// Package main Journey Server API
//
//	@title						Journey Server API
//	@version					1.0
//	@description				Backend for crews, challenges, retrospectives and notifications.
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Auth
//	@tag.description			Registration, login and OAuth
//
//	@tag.name					User
//	@tag.description			Account and profile management
//
//	@tag.name					Crew
//	@tag.description			Crews and the membership ledger
//
//	@tag.name					Template
//	@tag.description			Retrospective templates
//
//	@tag.name					Challenge
//	@tag.description			Challenges, KPIs and achievements
//
//	@tag.name					Retrospect
//	@tag.description			Retrospectives and weekly analyses
//
//	@tag.name					Notification
//	@tag.description			Per-user notification inbox
package main
