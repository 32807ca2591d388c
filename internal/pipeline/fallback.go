package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"careerpilot/internal/types"
)

// Deterministic stage fallbacks. These run when a generation stage's
// gateway attempt fails (or its policy is local-only) and must always
// produce a usable value from the skill sets alone.

// skillTopics lists study topics for skills that get a tailored phase.
// Skills without an entry fall through to generic topics.
var skillTopics = map[string][]string{
	"JavaScript": {"ES6+ syntax and modules", "Async patterns and promises", "DOM and browser APIs"},
	"TypeScript": {"Type system fundamentals", "Generics and utility types", "Migrating JavaScript codebases"},
	"React":      {"Components and hooks", "State management", "Routing and data fetching"},
	"Node.js":    {"Event loop and async I/O", "Express or Fastify services", "npm packaging and tooling"},
	"Python":     {"Core syntax and data structures", "Virtual environments and packaging", "Testing with pytest"},
	"Go":         {"Syntax, slices and maps", "Goroutines and channels", "Modules and tooling"},
	"Java":       {"OOP and collections", "Streams and concurrency", "Build tooling with Maven or Gradle"},
	"SQL":        {"Joins and aggregation", "Indexing and query plans", "Schema design and migrations"},
	"PostgreSQL": {"Advanced queries and CTEs", "Indexing strategies", "Backup and replication basics"},
	"MongoDB":    {"Document modeling", "Aggregation pipelines", "Indexes and performance"},
	"AWS":        {"IAM and core services", "EC2, S3 and VPC basics", "Deploying a small application"},
	"Docker":     {"Images and containers", "Writing Dockerfiles", "Compose for local stacks"},
	"Kubernetes": {"Pods, deployments and services", "ConfigMaps and secrets", "Debugging workloads"},
	"Terraform":  {"HCL and providers", "State management", "Modules and workspaces"},
	"GraphQL":    {"Schema design", "Resolvers and data loaders", "Client integration"},
	"Git":        {"Branching workflows", "Rebasing and conflict resolution", "Code review practices"},
}

// phaseWeeks estimates the study weeks for one skill phase. Heavier
// platform skills get longer phases than tools.
var phaseWeeks = map[string]int{
	"AWS":        4,
	"Azure":      4,
	"GCP":        4,
	"Kubernetes": 4,
	"Java":       4,
	"Go":         3,
	"Python":     3,
	"JavaScript": 3,
	"TypeScript": 3,
	"React":      3,
	"Node.js":    3,
	"SQL":        3,
	"Git":        1,
	"Docker":     2,
}

const defaultPhaseWeeks = 3

func weeksFor(skill string) int {
	if w, ok := phaseWeeks[skill]; ok {
		return w
	}
	return defaultPhaseWeeks
}

// fallbackRoadmap builds one phase per missing skill, in the job's
// priority order, each phase gated on the one before it.
func fallbackRoadmap(missingSkills []string) types.Roadmap {
	phases := make([]types.RoadmapPhase, 0, len(missingSkills))
	for i, skill := range missingSkills {
		topics, ok := skillTopics[skill]
		if !ok {
			topics = []string{
				fmt.Sprintf("%s fundamentals", skill),
				fmt.Sprintf("Hands-on practice with %s", skill),
				fmt.Sprintf("Applying %s in a small project", skill),
			}
		}
		prerequisites := []string{}
		if i > 0 {
			prerequisites = []string{missingSkills[i-1]}
		}
		phases = append(phases, types.RoadmapPhase{
			Skill:         skill,
			Order:         i + 1,
			Duration:      fmt.Sprintf("%d weeks", weeksFor(skill)),
			Topics:        topics,
			Prerequisites: prerequisites,
		})
	}
	return types.Roadmap{
		Phases:        phases,
		TotalDuration: totalDuration(phases),
	}
}

var durationWeeksPattern = regexp.MustCompile(`(\d{1,3})\s*weeks?`)

// totalDuration sums the parseable "N weeks" phase durations, counting
// unparseable phases at the default estimate.
func totalDuration(phases []types.RoadmapPhase) string {
	if len(phases) == 0 {
		return ""
	}
	weeks := 0
	for _, phase := range phases {
		if m := durationWeeksPattern.FindStringSubmatch(strings.ToLower(phase.Duration)); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				weeks += n
				continue
			}
		}
		weeks += defaultPhaseWeeks
	}
	return fmt.Sprintf("about %d weeks", weeks)
}

// projectTemplate is a canned portfolio project keyed by its lead skill.
type projectTemplate struct {
	title       string
	description string
	steps       []string
}

var projectTemplates = map[string]projectTemplate{
	"React": {
		title:       "Job Application Tracker",
		description: "A single-page app for tracking job applications through interview stages, with filtering, notes and status history.",
		steps:       []string{"Build a Kanban-style stage board", "Add client-side routing", "Persist state through a REST backend"},
	},
	"Node.js": {
		title:       "Task Queue API",
		description: "A REST API that accepts long-running jobs, processes them through a worker queue and exposes job status endpoints.",
		steps:       []string{"Implement authenticated REST endpoints", "Add background worker processing", "Add rate limiting and request validation"},
	},
	"Python": {
		title:       "Log Analytics CLI",
		description: "A command-line tool that parses server logs, aggregates error rates per endpoint and emits daily summary reports.",
		steps:       []string{"Implement streaming file parsing", "Add configurable report formats", "Unit-test the aggregation logic"},
	},
	"Go": {
		title:       "URL Shortener Service",
		description: "A small HTTP service with persistent short links, hit counting and an admin endpoint, deployed as a single binary.",
		steps:       []string{"Build a concurrent-safe storage layer", "Implement graceful shutdown", "Expose a Prometheus metrics endpoint"},
	},
	"AWS": {
		title:       "Serverless Image Pipeline",
		description: "An S3-triggered pipeline that resizes uploaded images with Lambda and serves them through CloudFront.",
		steps:       []string{"Define the infrastructure as code", "Wire the event-driven processing", "Add cost-aware storage lifecycle rules"},
	},
	"Docker": {
		title:       "Containerized Dev Environment",
		description: "A reproducible multi-service development stack (app, database, cache) orchestrated with Compose and health checks.",
		steps:       []string{"Write multi-stage image builds", "Add service health checks", "Script a one-command startup"},
	},
	"Kubernetes": {
		title:       "Self-Healing Web Deployment",
		description: "A web application deployed to a local cluster with rolling updates, liveness probes and horizontal autoscaling.",
		steps:       []string{"Write declarative manifests", "Configure a rolling update strategy", "Set resource limits and autoscaling"},
	},
	"SQL": {
		title:       "Warehouse Reporting Layer",
		description: "A reporting schema over a normalized sales database with materialized summaries and documented query patterns.",
		steps:       []string{"Build window-function reports", "Document index tuning decisions", "Write migration scripts"},
	},
	"TypeScript": {
		title:       "Typed API Client Library",
		description: "A published client library for a public API with full type coverage, retries and integration tests.",
		steps:       []string{"Generate types from an OpenAPI spec", "Implement retry and timeout handling", "Publish semantic-versioned releases"},
	},
	"Machine Learning": {
		title:       "Resume Keyword Classifier",
		description: "A text classifier that labels resume bullet points by skill category, trained and evaluated on a public dataset.",
		steps:       []string{"Build a reproducible training pipeline", "Write an evaluation report with baselines", "Serve the model behind an inference API"},
	},
}

const maxFallbackProjects = 3

// difficultyFor maps the candidate's experience level to a project
// difficulty tier.
func difficultyFor(experienceLevel string) string {
	switch experienceLevel {
	case "senior":
		return "Advanced"
	case "junior":
		return "Beginner"
	default:
		return "Intermediate"
	}
}

// fallbackProjects suggests portfolio projects that exercise the
// missing skills first, topped up from matched skills, ending with a
// generic capstone when no template applies.
func fallbackProjects(matchedSkills, missingSkills []string, experienceLevel string) []types.Project {
	difficulty := difficultyFor(experienceLevel)

	ordered := make([]string, 0, len(missingSkills)+len(matchedSkills))
	ordered = append(ordered, missingSkills...)
	ordered = append(ordered, matchedSkills...)

	projects := make([]types.Project, 0, maxFallbackProjects)
	seen := make(map[string]bool)
	for _, skill := range ordered {
		if len(projects) == maxFallbackProjects {
			return projects
		}
		tmpl, ok := projectTemplates[skill]
		if !ok || seen[skill] {
			continue
		}
		seen[skill] = true
		projects = append(projects, types.Project{
			Title:               tmpl.title,
			Description:         tmpl.description,
			Difficulty:          difficulty,
			EstimatedTime:       "2-3 weeks",
			SkillsCovered:       supportingSkills(skill, ordered),
			ImplementationSteps: tmpl.steps,
			PortfolioValue:      fmt.Sprintf("Demonstrates practical %s experience on a reviewable, completed project.", skill),
		})
	}

	if len(projects) == 0 {
		projects = append(projects, types.Project{
			Title:               "Personal Portfolio Site",
			Description:         "A portfolio site presenting your projects and experience, built and deployed end to end.",
			Difficulty:          difficulty,
			EstimatedTime:       "1-2 weeks",
			SkillsCovered:       firstN(ordered, 3),
			ImplementationSteps: []string{"Design a responsive layout", "Write project case studies", "Automate the deployment"},
			PortfolioValue:      "Gives recruiters a single place to evaluate your work.",
		})
	}
	return projects
}

// supportingSkills returns the lead skill plus up to two others from
// the candidate's skill pool.
func supportingSkills(lead string, pool []string) []string {
	covered := []string{lead}
	for _, skill := range pool {
		if len(covered) == 3 {
			break
		}
		if skill != lead {
			covered = append(covered, skill)
		}
	}
	return covered
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return append([]string{}, values...)
	}
	return append([]string{}, values[:n]...)
}

// questionBank holds one canned technical question per skill.
var questionBank = map[string]types.InterviewQuestion{
	"JavaScript": {
		Question:    "Explain the difference between var, let and const, and how closures interact with each.",
		Category:    "technical",
		SkillTested: "JavaScript",
		Hints:       []string{"Think about scoping rules", "Consider a loop that creates callbacks"},
	},
	"React": {
		Question:    "Walk through what happens when a React component re-renders, and how you would prevent unnecessary re-renders.",
		Category:    "technical",
		SkillTested: "React",
		Hints:       []string{"Reconciliation and keys", "memo, useMemo, useCallback"},
	},
	"Node.js": {
		Question:    "How does the Node.js event loop handle a slow database query without blocking other requests?",
		Category:    "technical",
		SkillTested: "Node.js",
		Hints:       []string{"Phases of the event loop", "libuv thread pool"},
	},
	"Python": {
		Question:    "Write a function that returns the k most frequent words in a document, and state its complexity.",
		Category:    "coding",
		SkillTested: "Python",
		TimeLimit:   "20 minutes",
		Hints:       []string{"A counter plus a heap", "Watch the tie-handling"},
	},
	"Go": {
		Question:    "Implement a worker pool that processes jobs from a channel and shuts down cleanly on context cancellation.",
		Category:    "coding",
		SkillTested: "Go",
		TimeLimit:   "25 minutes",
		Hints:       []string{"WaitGroup for draining", "select on ctx.Done()"},
	},
	"SQL": {
		Question:    "Given orders and customers tables, write a query for each customer's latest order, and explain how you would index it.",
		Category:    "coding",
		SkillTested: "SQL",
		TimeLimit:   "15 minutes",
		Hints:       []string{"Window functions or a correlated subquery"},
	},
	"AWS": {
		Question:    "Design the AWS architecture for a web app that must survive an availability-zone outage. Which services do you pick and why?",
		Category:    "system_design",
		SkillTested: "AWS",
		Hints:       []string{"Multi-AZ RDS, load balancing", "Stateless app tier"},
	},
	"Docker": {
		Question:    "Your container image is 2 GB. How do you cut its size and speed up builds?",
		Category:    "technical",
		SkillTested: "Docker",
		Hints:       []string{"Multi-stage builds", "Layer ordering and caching"},
	},
	"Kubernetes": {
		Question:    "A deployment's pods keep restarting. Walk through how you would diagnose and fix it.",
		Category:    "technical",
		SkillTested: "Kubernetes",
		Hints:       []string{"kubectl describe and logs", "Probe configuration and resource limits"},
	},
	"TypeScript": {
		Question:    "How would you type a function that takes an object and a list of its keys and returns the picked subset?",
		Category:    "coding",
		SkillTested: "TypeScript",
		TimeLimit:   "15 minutes",
		Hints:       []string{"Generics with keyof", "Mapped types"},
	},
}

const maxFallbackQuestions = 6

// fallbackQuestions builds a question set from the job's skills:
// skill-specific technical questions first, then a behavioral and a
// design question so every set covers more than trivia.
func fallbackQuestions(jobSkills, matchedSkills []string, experienceLevel string) []types.InterviewQuestion {
	difficulty := map[string]string{
		"junior": "easy",
		"senior": "hard",
	}[experienceLevel]
	if difficulty == "" {
		difficulty = "medium"
	}

	// Skills the candidate already has come first: interviewers probe
	// claimed strengths before gaps.
	ordered := make([]string, 0, len(jobSkills))
	ordered = append(ordered, matchedSkills...)
	ordered = append(ordered, jobSkills...)

	questions := make([]types.InterviewQuestion, 0, maxFallbackQuestions)
	seen := make(map[string]bool)
	for _, skill := range ordered {
		if len(questions) == maxFallbackQuestions-2 {
			break
		}
		q, ok := questionBank[skill]
		if !ok || seen[skill] {
			continue
		}
		seen[skill] = true
		q.Difficulty = difficulty
		questions = append(questions, q)
	}

	questions = append(questions, types.InterviewQuestion{
		Question:   "Tell me about a project where the requirements changed late. How did you handle it and what would you do differently?",
		Category:   "behavioral",
		Difficulty: difficulty,
	})
	questions = append(questions, types.InterviewQuestion{
		Question:   "Design a service that analyzes uploaded documents and must stay responsive when a downstream dependency is slow.",
		Category:   "system_design",
		Difficulty: difficulty,
		Hints:      []string{"Timeouts and fallbacks", "Queueing versus synchronous processing"},
	})
	return questions
}
