package pipeline

import (
	"fmt"
	"net/url"
	"strings"

	"careerpilot/internal/types"
)

// resourceCatalog maps skills to curated starting points. Unknown
// skills get a search link so no phase ships without resources.
var resourceCatalog = map[string][]types.LearningResource{
	"JavaScript": {
		{Title: "MDN JavaScript Guide", URL: "https://developer.mozilla.org/en-US/docs/Web/JavaScript/Guide", Type: "docs", Free: true},
		{Title: "JavaScript.info", URL: "https://javascript.info/", Type: "course", Free: true},
	},
	"TypeScript": {
		{Title: "TypeScript Handbook", URL: "https://www.typescriptlang.org/docs/handbook/intro.html", Type: "docs", Free: true},
	},
	"React": {
		{Title: "React Official Tutorial", URL: "https://react.dev/learn", Type: "docs", Free: true},
		{Title: "Epic React", URL: "https://www.epicreact.dev/", Type: "course", Free: false},
	},
	"Node.js": {
		{Title: "Node.js Guides", URL: "https://nodejs.org/en/learn", Type: "docs", Free: true},
	},
	"Python": {
		{Title: "Official Python Tutorial", URL: "https://docs.python.org/3/tutorial/", Type: "docs", Free: true},
		{Title: "Automate the Boring Stuff", URL: "https://automatetheboringstuff.com/", Type: "book", Free: true},
	},
	"Go": {
		{Title: "A Tour of Go", URL: "https://go.dev/tour/", Type: "course", Free: true},
		{Title: "Go by Example", URL: "https://gobyexample.com/", Type: "docs", Free: true},
	},
	"Java": {
		{Title: "Dev.java Tutorials", URL: "https://dev.java/learn/", Type: "docs", Free: true},
	},
	"SQL": {
		{Title: "SQLBolt", URL: "https://sqlbolt.com/", Type: "course", Free: true},
		{Title: "Use The Index, Luke", URL: "https://use-the-index-luke.com/", Type: "book", Free: true},
	},
	"PostgreSQL": {
		{Title: "PostgreSQL Tutorial", URL: "https://www.postgresqltutorial.com/", Type: "course", Free: true},
	},
	"MongoDB": {
		{Title: "MongoDB University", URL: "https://learn.mongodb.com/", Type: "course", Free: true},
	},
	"AWS": {
		{Title: "AWS Skill Builder", URL: "https://skillbuilder.aws/", Type: "course", Free: true},
		{Title: "AWS Well-Architected", URL: "https://aws.amazon.com/architecture/well-architected/", Type: "docs", Free: true},
	},
	"Docker": {
		{Title: "Docker Getting Started", URL: "https://docs.docker.com/get-started/", Type: "docs", Free: true},
	},
	"Kubernetes": {
		{Title: "Kubernetes Basics", URL: "https://kubernetes.io/docs/tutorials/kubernetes-basics/", Type: "docs", Free: true},
	},
	"Terraform": {
		{Title: "Terraform Tutorials", URL: "https://developer.hashicorp.com/terraform/tutorials", Type: "docs", Free: true},
	},
	"GraphQL": {
		{Title: "How to GraphQL", URL: "https://www.howtographql.com/", Type: "course", Free: true},
	},
	"Git": {
		{Title: "Pro Git Book", URL: "https://git-scm.com/book/en/v2", Type: "book", Free: true},
	},
	"Machine Learning": {
		{Title: "fast.ai Practical Deep Learning", URL: "https://course.fast.ai/", Type: "course", Free: true},
	},
}

// attachResources fills in the Resources of every roadmap phase that
// lacks them. Gateway-built phases arrive without resources; fallback
// phases go through the same path so both look identical to callers.
func attachResources(roadmap *types.Roadmap) {
	for i := range roadmap.Phases {
		if len(roadmap.Phases[i].Resources) > 0 {
			continue
		}
		roadmap.Phases[i].Resources = resourcesFor(roadmap.Phases[i].Skill)
	}
}

func resourcesFor(skill string) []types.LearningResource {
	if resources, ok := resourceCatalog[skill]; ok {
		out := make([]types.LearningResource, len(resources))
		copy(out, resources)
		return out
	}
	query := url.QueryEscape(strings.TrimSpace(skill) + " tutorial")
	return []types.LearningResource{
		{
			Title: fmt.Sprintf("Search: %s tutorials", skill),
			URL:   "https://www.google.com/search?q=" + query,
			Type:  "course",
			Free:  true,
		},
	}
}
