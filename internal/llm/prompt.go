package llm

import "fmt"

// SystemPrompt pins the output contract: a bare JSON object, no markdown,
// no prose around it.
const SystemPrompt = `Eres un asistente académico experto en metodología de la investigación. Analiza el tema y genera preguntas de investigación estratégicas, rigurosas y viables para una tesis universitaria. Cada pregunta debe ser clara, investigable y con un alcance realista. Responde únicamente con JSON válido (sin markdown) con el esquema: {"questions":[{"position":number,"question":string,"rationale":string,"keywords":string[]}]}.`

// UserPrompt embeds the resolved topic, language, and requested count.
func UserPrompt(p Params) string {
	return fmt.Sprintf(
		"Tema: %s\nIdioma: %s\nGenera %d preguntas. Incluye una breve justificación (rationale) y 3-8 keywords por pregunta. No agregues texto fuera del JSON.",
		p.Topic, p.Language, p.NumQuestions,
	)
}
