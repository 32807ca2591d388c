package gateway

import (
	"fmt"
	"strings"
)

// StagePrompts holds the system instruction and user prompt template
// for one generation stage.
type StagePrompts struct {
	System string
	User   string
}

// defaultPrompts provides the default prompts per stage. User templates
// are filled from the PromptContext at invocation time.
var defaultPrompts = map[Stage]StagePrompts{
	StageParseSkills: {
		System: `You are an expert technical recruiter and resume parser. Your core principles are:

- Extract only skills that are explicitly present in the text
- Use canonical technology names (e.g. "Node.js", not "node")
- Never invent or infer skills that are not stated
- Classify experience level strictly from titles and stated years`,
		User: `Extract the technical skills from the resume and the job description below.

Return:
- resumeSkills: canonical skill names found in the resume
- jobSkills: canonical skill names required by the job description
- jobKeywords: other notable keywords and phrases from the job description
- experienceLevel: one of "junior", "mid-level", "senior" based on the resume

**Resume:**
%s

**Job Description:**
%s`,
	},
	StageBuildRoadmap: {
		System: `You are an expert engineering mentor who designs practical learning plans. Your principles are:

- Order phases so prerequisites come before dependents
- Keep durations realistic for a working professional
- Focus each phase on exactly one skill
- Prefer hands-on topics over theory`,
		User: `Build a learning roadmap for a %s-level candidate who needs to learn these missing skills to qualify for the role:

Missing skills: %s
Already known: %s

For each missing skill produce a phase with: skill, order (1-based priority), duration (e.g. "3 weeks"), topics (3-5 concrete topics), prerequisites (skill names from this plan or already-known skills).`,
	},
	StageSuggestProjects: {
		System: `You are a senior engineer who designs portfolio projects for job seekers. Your principles are:

- Each project must exercise several of the candidate's target skills together
- Scope projects so they are finishable in weeks, not months
- Describe features a hiring manager can verify in a repository
- Match difficulty to the candidate's experience level`,
		User: `Suggest 2-3 portfolio projects for a %s-level candidate targeting this role.

Skills to showcase: %s
Skills still being learned: %s

For each project provide: title, description, difficulty (Beginner/Intermediate/Advanced), estimatedTime, skillsCovered, implementationSteps (3-5 ordered build steps), portfolioValue (one sentence on why it impresses for this role).`,
	},
	StageGenerateQuestions: {
		System: `You are an experienced technical interviewer. Your principles are:

- Questions must target the specific skills listed, not generic trivia
- Mix categories: technical, coding, behavioral, system_design
- Scale difficulty to the candidate's experience level
- Hints should nudge toward the approach without giving the answer`,
		User: `Generate 5-8 interview practice questions for a %s-level candidate for this role.

Skills to test: %s

For each question provide: question, category (technical/coding/behavioral/system_design), difficulty (easy/medium/hard), skillTested, timeLimit (e.g. "20 minutes"), hints (1-3 short hints).`,
	},
	StageRankCandidate: {
		System: `You are a technical hiring screener. Your principles are:

- Judge fit strictly against the job description
- Reward demonstrated experience over listed keywords
- Be concise and factual in summaries
- Never penalize or reward candidates for personal characteristics`,
		User: `Assess how well this candidate fits the role.

**Job Description:**
%s

**Candidate Resume:**
%s

Provide: fitScore (0-100) and summary (two sentences on strengths and gaps for this specific role).`,
	},
	StageRewriteSummary: {
		System: `You are an expert resume writer with a strict commitment to honesty. Your principles are:

- Never invent, exaggerate, or misattribute skills or experience
- Every claim must be traceable to the original summary or resume
- Emphasize the skills that match the target role
- Keep the summary to 2-3 sentences in first person without pronouns`,
		User: `Rewrite this professional summary to better target the role, using only facts present in the original resume.

**Original Summary:**
%s

**Matched skills to emphasize:**
%s

**Job Description:**
%s

Provide: summary (the rewritten text).`,
	},
}

// BuildPrompts renders the system instruction and user prompt for a
// stage from the prompt context.
func BuildPrompts(stage Stage, pc PromptContext) (systemPrompt, userPrompt string, err error) {
	prompts, ok := defaultPrompts[stage]
	if !ok {
		return "", "", fmt.Errorf("no prompts defined for stage %q", stage)
	}

	switch stage {
	case StageParseSkills:
		userPrompt = fmt.Sprintf(prompts.User, pc.ResumeText, pc.JobDescription)
	case StageBuildRoadmap:
		userPrompt = fmt.Sprintf(prompts.User,
			levelOrDefault(pc.ExperienceLevel),
			joinOrNone(pc.MissingSkills),
			joinOrNone(pc.MatchedSkills))
	case StageSuggestProjects:
		userPrompt = fmt.Sprintf(prompts.User,
			levelOrDefault(pc.ExperienceLevel),
			joinOrNone(pc.MatchedSkills),
			joinOrNone(pc.MissingSkills))
	case StageGenerateQuestions:
		userPrompt = fmt.Sprintf(prompts.User,
			levelOrDefault(pc.ExperienceLevel),
			joinOrNone(pc.JobSkills))
	case StageRankCandidate:
		userPrompt = fmt.Sprintf(prompts.User, pc.JobDescription, pc.ResumeText)
	case StageRewriteSummary:
		userPrompt = fmt.Sprintf(prompts.User,
			pc.OriginalSummary,
			joinOrNone(pc.MatchedSkills),
			pc.JobDescription)
	default:
		return "", "", fmt.Errorf("no prompt builder for stage %q", stage)
	}

	return prompts.System, userPrompt, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func levelOrDefault(level string) string {
	if level == "" {
		return "mid-level"
	}
	return level
}
