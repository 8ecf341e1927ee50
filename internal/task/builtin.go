package task

import "clinex/internal/domain"

// Task names for the three study questionnaires.
const (
	PreOp         = "preop"
	PostOp        = "postop"
	DiseaseCourse = "discourse"
)

func init() {
	Register(preOpTask())
	Register(postOpTask())
	Register(diseaseCourseTask())
}

// preOpTask asks for symptoms present before the first surgery.
func preOpTask() *domain.ExtractionTask {
	return &domain.ExtractionTask{
		Name: PreOp,
		Instructions: "In the provided document please look for the following preoperative symptoms: " +
			"Sudden Severe Facial Pain, Facial Numbness, Vertigo, Lacrimation, Facial Muscle Spasm, and Other (related to trigeminal neuralgia). " +
			"In your Answer, first reason whether any of your findings can really be considered a preoperative symptom. " +
			"Focus on the fact that it is only a preoperative symptom only if it was already present before the FIRST surgery. " +
			"Always consider the first surgery if the patient underwent multiple ones. " +
			"Consider the symptom only if it is explicitly mentioned in the documents; if it is not mentioned, always assume the symptom is not present. " +
			"After reasoning about your findings, provide a final answer in the form of bullet points with " +
			"'Name of the Symptom': 'Yes' or 'No' for each individual point.",
		Items: []domain.TaskItem{
			{Name: "Trigeminal Pain", Synonyms: []string{"sudden", "facial pain"}, Format: domain.FormatBinary},
			{Name: "Facial Numbness", Synonyms: []string{"facial numbness", "taub"}, Format: domain.FormatBinary},
			{Name: "Vertigo", Synonyms: []string{"vertigo", "dizz"}, Format: domain.FormatBinary},
			{Name: "Lacrimation", Synonyms: []string{"lacrimation", "tear"}, Format: domain.FormatBinary},
			{Name: "Facial Muscle Spasm", Synonyms: []string{"spasm", "muscle"}, Format: domain.FormatBinary},
			{Name: "Other", Synonyms: []string{"other"}, Format: domain.FormatBinary},
		},
	}
}

// postOpTask asks for complications newly present after surgery.
func postOpTask() *domain.ExtractionTask {
	return &domain.ExtractionTask{
		Name: PostOp,
		Instructions: "In the provided document, please look for the following postoperative complications: " +
			"CSF leak, infection, facial palsy, facial numbness, and hearing loss. " +
			"In your Answer, first reason whether any of your findings can really be considered a surgical complication. " +
			"Focus on the fact that it is only a complication if it was not present before surgery and it is present afterwards. " +
			"Complications, if present, are always explicitly mentioned in the documents; " +
			"if it is not mentioned, you must assume that the complication is not present. " +
			"Please be mindful about the fact that the surgical access area is behind the ear, " +
			"therefore numbness in that area should NOT be considered under facial numbness. " +
			"After reasoning about your findings, provide a final answer in the form of bullet points with " +
			"'Name of the Complication': 'Yes' or 'No' for each individual point. Do not use bold text.",
		Items: []domain.TaskItem{
			{Name: "CSF Leak", Synonyms: []string{"leak", "liquor"}, Format: domain.FormatBinary},
			{Name: "Infection", Synonyms: []string{"infection", "infektion"}, Format: domain.FormatBinary},
			{Name: "Facial Palsy", Synonyms: []string{"facial palsy", "gesichtslähmung"}, Format: domain.FormatBinary},
			{Name: "Facial Numbness", Synonyms: []string{"facial numbness", "taub"}, Format: domain.FormatBinary},
			{Name: "Hearing Loss", Synonyms: []string{"hearing loss", "hörverlust"}, Format: domain.FormatBinary},
		},
	}
}

// diseaseCourseTask asks for the course of symptoms across one or two surgeries.
// Items that depend on a second surgery having happened are ternary.
func diseaseCourseTask() *domain.ExtractionTask {
	return &domain.ExtractionTask{
		Name: DiseaseCourse,
		Instructions: "In the provided document, please analyze the patient's disease course based on the text within <context> " +
			"and determine the correct values for each of the following requested data point. " +
			"After providing a summary of the patients disease course, provide a final answer in the form of bullet points " +
			"following the same structure of the datapoints below.\n" +
			"- Any improvement of pain after first surgery (Yes/No)\n" +
			"- Completely free of pain after first surgery (Yes/No)\n" +
			"- Symptom recurrence after first surgery (Yes/No, if it is not explicitly mentioned, assume there was no recurrence)\n" +
			"- A second surgery was carried out (Yes/No, if it is not explicitly mentioned, assume there was no second surgery)\n" +
			"- Free of pain after second surgery (Yes/No/Not provided)\n" +
			"- Recurrence after second surgery (Yes/No/Not provided)\n" +
			"- Thermocoagulation was carried out (Yes/No/Not provided)",
		Items: []domain.TaskItem{
			{Name: "Symptom-improvement after 1. surgery", Synonyms: []string{"improvement", "betterment"}, Format: domain.FormatBinary},
			{Name: "Free of pain after first surgery",
				Synonyms: []string{"free of pain after first", "painfree after first", "painfree after 1", "free of pain after 1"},
				Format:   domain.FormatBinary},
			{Name: "Recurrence after first surgery",
				Synonyms: []string{"recurrence after first", "recurrence after 1"},
				Format:   domain.FormatBinary},
			// "Free of pain after second surgery" and "Recurrence after second
			// surgery" only match by exact name so the broad "second surgery"
			// synonym below cannot swallow them first.
			{Name: "Second surgery",
				Synonyms: []string{"second surgery", "2nd surgery", "2. surgery"},
				Format:   domain.FormatBinary},
			{Name: "Free of pain after second surgery", Format: domain.FormatTernary},
			{Name: "Recurrence after second surgery", Format: domain.FormatTernary},
			{Name: "Thermocoagulation", Synonyms: []string{"thermocoag", "coagulation"}, Format: domain.FormatTernary},
		},
	}
}
