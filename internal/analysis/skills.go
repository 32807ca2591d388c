package analysis

import "strings"

// skillEntry maps a canonical skill name to the aliases that may appear
// in free text. Aliases are matched whole-word, case-insensitive.
type skillEntry struct {
	Name    string
	Aliases []string
}

// skillCatalog is the ordered catalog of recognized skills. Extraction
// results preserve this order, which keeps downstream output stable for
// identical inputs.
var skillCatalog = []skillEntry{
	{"JavaScript", []string{"javascript", "js", "es6", "ecmascript"}},
	{"TypeScript", []string{"typescript", "ts"}},
	{"Python", []string{"python", "python3"}},
	{"Java", []string{"java"}},
	{"Go", []string{"go", "golang"}},
	{"C++", []string{"c++", "cpp"}},
	{"C#", []string{"c#", "csharp", ".net", "dotnet"}},
	{"Ruby", []string{"ruby", "rails", "ruby on rails"}},
	{"PHP", []string{"php", "laravel"}},
	{"Swift", []string{"swift"}},
	{"Kotlin", []string{"kotlin"}},
	{"Rust", []string{"rust"}},
	{"SQL", []string{"sql"}},
	{"HTML", []string{"html", "html5"}},
	{"CSS", []string{"css", "css3", "sass", "scss", "tailwind"}},
	{"React", []string{"react", "reactjs", "react.js"}},
	{"Angular", []string{"angular", "angularjs"}},
	{"Vue.js", []string{"vue", "vuejs", "vue.js"}},
	{"Node.js", []string{"node", "nodejs", "node.js"}},
	{"Express", []string{"express", "expressjs", "express.js"}},
	{"Next.js", []string{"nextjs", "next.js"}},
	{"Django", []string{"django"}},
	{"Flask", []string{"flask"}},
	{"FastAPI", []string{"fastapi"}},
	{"Spring", []string{"spring", "spring boot", "springboot"}},
	{"AWS", []string{"aws", "amazon web services", "ec2", "s3", "lambda"}},
	{"Azure", []string{"azure"}},
	{"GCP", []string{"gcp", "google cloud"}},
	{"Docker", []string{"docker", "containerization"}},
	{"Kubernetes", []string{"kubernetes", "k8s"}},
	{"Terraform", []string{"terraform"}},
	{"Jenkins", []string{"jenkins"}},
	{"CI/CD", []string{"ci cd", "cicd", "continuous integration", "continuous deployment"}},
	{"Git", []string{"git", "github", "gitlab"}},
	{"Linux", []string{"linux", "unix", "bash"}},
	{"MongoDB", []string{"mongodb", "mongo"}},
	{"PostgreSQL", []string{"postgresql", "postgres"}},
	{"MySQL", []string{"mysql"}},
	{"Redis", []string{"redis"}},
	{"Elasticsearch", []string{"elasticsearch", "elastic"}},
	{"Kafka", []string{"kafka"}},
	{"RabbitMQ", []string{"rabbitmq"}},
	{"GraphQL", []string{"graphql"}},
	{"REST", []string{"rest", "restful", "rest api", "rest apis"}},
	{"gRPC", []string{"grpc"}},
	{"Microservices", []string{"microservices", "microservice"}},
	{"Machine Learning", []string{"machine learning", "ml", "deep learning"}},
	{"TensorFlow", []string{"tensorflow"}},
	{"PyTorch", []string{"pytorch"}},
	{"Pandas", []string{"pandas"}},
	{"NumPy", []string{"numpy"}},
	{"Data Analysis", []string{"data analysis", "data analytics"}},
	{"Spark", []string{"spark", "pyspark"}},
	{"Airflow", []string{"airflow"}},
	{"Agile", []string{"agile", "scrum", "kanban"}},
}

// canonicalSkills resolves arbitrary skill strings to catalog names.
var canonicalSkills = buildCanonicalIndex()

func buildCanonicalIndex() map[string]string {
	index := make(map[string]string)
	for _, entry := range skillCatalog {
		index[strings.ToLower(entry.Name)] = entry.Name
		for _, alias := range entry.Aliases {
			index[alias] = entry.Name
		}
	}
	return index
}

// ExtractSkills scans free text and returns the canonical names of all
// recognized skills, in catalog order and without duplicates.
func ExtractSkills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	haystack := normalizeForMatch(text)
	found := make([]string, 0, 16)
	for _, entry := range skillCatalog {
		for _, alias := range entry.Aliases {
			if strings.Contains(haystack, " "+alias+" ") {
				found = append(found, entry.Name)
				break
			}
		}
	}
	return found
}

// CanonicalizeSkills maps declared skill strings (e.g. from a candidate
// profile) onto catalog names, dropping unrecognized entries and
// duplicates while preserving catalog order.
func CanonicalizeSkills(skills []string) []string {
	present := make(map[string]bool, len(skills))
	for _, s := range skills {
		if name, ok := canonicalSkills[strings.ToLower(strings.TrimSpace(s))]; ok {
			present[name] = true
		}
	}
	out := make([]string, 0, len(present))
	for _, entry := range skillCatalog {
		if present[entry.Name] {
			out = append(out, entry.Name)
		}
	}
	return out
}

// MatchSkills splits job skills into those present in the resume skill
// set and those missing from it. Both slices preserve the job-skill
// order. missingCap limits the missing list; zero or negative means no
// cap.
func MatchSkills(resumeSkills, jobSkills []string, missingCap int) (matched, missing []string) {
	have := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		have[s] = true
	}
	matched = []string{}
	missing = []string{}
	for _, s := range jobSkills {
		if have[s] {
			matched = append(matched, s)
		} else if missingCap <= 0 || len(missing) < missingCap {
			missing = append(missing, s)
		}
	}
	return matched, missing
}

// SkillOverlap returns |matched| / max(|jobSkills|, 1), the fraction of
// job skills present in the resume skill set. A job with no recognized
// skills yields zero overlap.
func SkillOverlap(resumeSkills, jobSkills []string) float64 {
	if len(jobSkills) == 0 {
		return 0
	}
	matched, _ := MatchSkills(resumeSkills, jobSkills, 0)
	return float64(len(matched)) / float64(len(jobSkills))
}
