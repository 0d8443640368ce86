package app

import (
	"powercars-survey-service/internal/domain"
)

// defaultTemplate returns the questionnaire seeded when no active template
// exists. The text, types, options, and ordering are load-bearing: analytics
// locates questions by substring match against this exact wording.
func defaultTemplate() (domain.SurveyTemplate, []domain.Question) {
	template := domain.SurveyTemplate{
		Title:       "Encuesta Organizacional PowerCars 2025",
		Description: "Encuesta para mapear la estructura organizacional y identificar áreas de mejora",
		Version:     "1.0",
		IsActive:    true,
		CreatedBy:   1,
	}

	questions := []domain.Question{
		// Sección 1: Información Personal
		{
			SectionName:  "Información Personal",
			QuestionText: "¿Cuál es tu nombre completo?",
			QuestionType: domain.QuestionText,
			IsRequired:   true,
			OrderIndex:   1,
		},
		{
			SectionName:  "Información Personal",
			QuestionText: "¿En qué área trabajas?",
			QuestionType: domain.QuestionSelect,
			Options:      []string{"Mecánica", "Administración", "Ventas", "Limpieza", "Seguridad", "Otro"},
			IsRequired:   true,
			OrderIndex:   2,
		},
		{
			SectionName:  "Información Personal",
			QuestionText: "¿Cuánto tiempo llevas trabajando en PowerCars?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Menos de 6 meses", "6-12 meses", "1-3 años", "3-5 años", "Más de 5 años"},
			IsRequired:   true,
			OrderIndex:   3,
		},

		// Sección 2: Rol y Responsabilidades
		{
			SectionName:  "Rol y Responsabilidades",
			QuestionText: "¿Cuál es tu rol específico en PowerCars?",
			QuestionType: domain.QuestionText,
			IsRequired:   true,
			OrderIndex:   4,
		},
		{
			SectionName:  "Rol y Responsabilidades",
			QuestionText: "¿Quién es tu líder directo o supervisor inmediato?",
			QuestionType: domain.QuestionText,
			IsRequired:   true,
			OrderIndex:   5,
		},
		{
			SectionName:  "Rol y Responsabilidades",
			QuestionText: "Describe tus principales funciones diarias:",
			QuestionType: domain.QuestionTextarea,
			IsRequired:   true,
			OrderIndex:   6,
		},

		// Sección 3: Impedimentos y Mejoras
		{
			SectionName:  "Impedimentos y Mejoras",
			QuestionText: "¿Existe algún impedimento principal para realizar tus funciones eficientemente?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Sí", "No"},
			IsRequired:   true,
			OrderIndex:   7,
		},
		{
			SectionName:  "Impedimentos y Mejoras",
			QuestionText: "Si respondiste sí, especifica cuáles impedimentos enfrentas:",
			QuestionType: domain.QuestionTextarea,
			OrderIndex:   8,
		},
		{
			SectionName:  "Impedimentos y Mejoras",
			QuestionText: "¿Crees que se pueden mejorar los protocolos actuales de trabajo?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Sí", "No", "No estoy seguro"},
			IsRequired:   true,
			OrderIndex:   9,
		},

		// Sección 4: Ambiente Laboral
		{
			SectionName:  "Ambiente Laboral",
			QuestionText: "¿Cómo calificarías el ambiente laboral en PowerCars?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Excelente", "Muy bueno", "Bueno", "Regular", "Malo"},
			IsRequired:   true,
			OrderIndex:   10,
		},
		{
			SectionName:  "Ambiente Laboral",
			QuestionText: "¿Te sientes valorado por tu trabajo?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Siempre", "Frecuentemente", "A veces", "Raramente", "Nunca"},
			IsRequired:   true,
			OrderIndex:   11,
		},
		{
			SectionName:  "Ambiente Laboral",
			QuestionText: "¿Cómo es la comunicación entre compañeros de trabajo?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Excelente", "Muy buena", "Buena", "Regular", "Mala"},
			IsRequired:   true,
			OrderIndex:   12,
		},

		// Sección 5: Condiciones Laborales
		{
			SectionName:  "Condiciones Laborales",
			QuestionText: "¿Cómo evalúas los horarios de trabajo actuales?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Muy adecuados", "Adecuados", "Aceptables", "Inadecuados", "Muy inadecuados"},
			IsRequired:   true,
			OrderIndex:   13,
		},
		{
			SectionName:  "Condiciones Laborales",
			QuestionText: "¿Tienes acceso a todas las herramientas necesarias para tu trabajo?",
			QuestionType: domain.QuestionRadio,
			Options:      []string{"Sí", "No", "Parcialmente"},
			IsRequired:   true,
			OrderIndex:   14,
		},

		// Sección 6: Experiencia General
		{
			SectionName:  "Experiencia General",
			QuestionText: "En una escala del 1 al 10, ¿cómo calificarías tu experiencia trabajando en PowerCars?",
			QuestionType: domain.QuestionScale,
			Options:      []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
			IsRequired:   true,
			OrderIndex:   15,
		},
		{
			SectionName:  "Experiencia General",
			QuestionText: "¿Qué es lo que más te gusta de trabajar aquí?",
			QuestionType: domain.QuestionTextarea,
			OrderIndex:   16,
		},
		{
			SectionName:  "Experiencia General",
			QuestionText: "¿Tienes ideas específicas que crees sería ideal implementar?",
			QuestionType: domain.QuestionTextarea,
			OrderIndex:   17,
		},
		{
			SectionName:  "Experiencia General",
			QuestionText: "Observaciones extras o comentarios adicionales:",
			QuestionType: domain.QuestionTextarea,
			OrderIndex:   18,
		},
	}

	return template, questions
}
