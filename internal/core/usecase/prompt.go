package usecase

import "fmt"

// maxResumeSnippet bounds how much extracted resume text goes into a prompt.
const maxResumeSnippet = 12000

func buildStructureResumePrompt(resumeText string) string {
	if len(resumeText) > maxResumeSnippet {
		resumeText = resumeText[:maxResumeSnippet]
	}

	return fmt.Sprintf(`You are an expert HR data extraction assistant.
You will be provided with a resume.
Your task is to extract the relevant information from the resume.
The output should be a JSON object with the following structure:
{
    "location": "",
    "skills": [],
    "total_experience": "",
    "work_experience": [
        {
            "title": "",
            "company": "",
            "position": "",
            "start_date": "",
            "end_date": "",
            "description": ""
        }
    ],
    "education": [
        {
            "degree": "",
            "institute": "",
            "field_of_study": "",
            "start_date": "",
            "end_date": ""
        }
    ],
    "certifications": [],
    "projects": [],
    "interests": []
}
Rules:
- The output should be a valid JSON object.
- Calculate total_experience from start_date to end_date in work_experience.
- If any fields are missing, leave it as empty.
- Do not include extra text or summary.
- Do not include any other information.

Resume text:
---
%s
---
`, resumeText)
}

func buildShortlistPrompt(candidateJSON, jobTitle, jobDescription, jobRequirements string) string {
	return fmt.Sprintf(`You are an expert AI assistant for resume shortlisting tasks.
You will be given a candidate resume entry returned from an embedding similarity search.
The entry has an id (the resume_id), a text field with the resume summary, metadata with the
user_id, and a distance: the lower the distance, the more similar the resume is to the job.

You will also be given the job title, job description and job requirements.
Score the candidate's resume from 0 to 100 against the job details, give a short explanation
for the score, and list key metrics highlighting strengths such as "5+ years of experience"
or "5+ projects" or valuable skills.
Return a JSON object with the following structure and respond only in that schema:

Schema:
{
    "score": "",
    "key_metrics": [],
    "reason": [],
    "resume_id": "",
    "user_id": ""
}

Inputs:
- Resume entry: %s
- Job Title: %s
- Job Description: %s
- Job Requirements: %s
- Tone: Professional and Concise

Rules:
- Provide a short explanation for the score and the key metric highlights.
- Output only in valid JSON
`, candidateJSON, jobTitle, jobDescription, jobRequirements)
}

func buildInterviewQuestionsPrompt(jobTitle, jobDescription, jobRequirements string, easy, medium, hard int) string {
	return fmt.Sprintf(`You are an expert AI assistant for interview tasks.
Your job is to provide tailored mock interviews for candidates based on the job description and requirements.
Generate a structured mock interview for the role.
Respond only in valid JSON and nothing else.
Each key maps to a list of questions with the following structure:

{
    "question": ""
}

Inputs:
- Job Title: %s
- Job Description: %s
- Job Requirements: %s
- Number of easy questions: %d
- Number of medium questions: %d
- Number of hard questions: %d
- Tone: Professional and Concise

Rules:
- Provide exactly the requested number of questions for each category.
- Each question should be action-result formatted and contain keywords relevant to the job.
- Keep each question concise (<= 30 words).
- Output only in valid JSON.
`, jobTitle, jobDescription, jobRequirements, easy, medium, hard)
}

func buildJobDescriptionPrompt(jobTitle, level, location string) string {
	return fmt.Sprintf(`You are an expert HR assistant specialized in creating comprehensive job descriptions.
Your task is to generate a professional and detailed job description based on the provided information.

Respond only in valid JSON format with the following structure:
{
    "title": "",
    "description": "",
    "key_responsibilities": [],
    "required_qualifications": [],
    "preferred_qualifications": [],
    "skills_required": [],
    "benefits": [],
    "employment_type": "",
    "experience_level": ""
}

Inputs:
- Job Title: %s
- Level: %s
- Location: %s

Rules:
- Keep the description realistic for the given level and location.
- Output only in valid JSON.
`, jobTitle, level, location)
}
