package model

// Discipline is one of the fixed subject areas an order belongs to.
type Discipline string

const (
	DisciplineMath        Discipline = "math"
	DisciplineScience     Discipline = "science"
	DisciplineTech        Discipline = "tech"
	DisciplineProgramming Discipline = "programming"
	DisciplineHumanities  Discipline = "humanities"
	DisciplineEconomics   Discipline = "economics"
	DisciplineLaw         Discipline = "law"
	DisciplineLanguages   Discipline = "languages"
	DisciplineText        Discipline = "text"
)

// Disciplines lists the selectable subject areas in presentation order.
var Disciplines = []Discipline{
	DisciplineMath,
	DisciplineScience,
	DisciplineTech,
	DisciplineProgramming,
	DisciplineHumanities,
	DisciplineEconomics,
	DisciplineLaw,
	DisciplineLanguages,
	DisciplineText,
}

// Valid reports whether the discipline is part of the catalog.
func (d Discipline) Valid() bool {
	for _, known := range Disciplines {
		if known == d {
			return true
		}
	}
	return false
}

// WorkType is one of the fixed kinds of work an order may request.
type WorkType string

const (
	WorkTypeProblem     WorkType = "problem"
	WorkTypeControl     WorkType = "control"
	WorkTypeCourse      WorkType = "course"
	WorkTypeLab         WorkType = "lab"
	WorkTypeDiploma     WorkType = "diploma"
	WorkTypeEssayPaper  WorkType = "referat"
	WorkTypePractice    WorkType = "practice"
	WorkTypeTest        WorkType = "test"
	WorkTypeDrawing     WorkType = "drawing"
	WorkTypeOnline      WorkType = "online"
	WorkTypeEssay       WorkType = "essay"
	WorkTypeTranslation WorkType = "translation"
	WorkTypeThesis      WorkType = "vkr"
	// WorkTypeOther requires a free-text clarification collected at intake.
	WorkTypeOther WorkType = "other"
)

// WorkTypes lists the selectable work kinds in presentation order.
var WorkTypes = []WorkType{
	WorkTypeProblem,
	WorkTypeControl,
	WorkTypeCourse,
	WorkTypeLab,
	WorkTypeDiploma,
	WorkTypeEssayPaper,
	WorkTypePractice,
	WorkTypeTest,
	WorkTypeDrawing,
	WorkTypeOnline,
	WorkTypeEssay,
	WorkTypeTranslation,
	WorkTypeThesis,
	WorkTypeOther,
}

// Valid reports whether the work type is part of the catalog.
func (w WorkType) Valid() bool {
	for _, known := range WorkTypes {
		if known == w {
			return true
		}
	}
	return false
}

// PlagiarismSystem is one of the supported originality screening services.
type PlagiarismSystem string

const (
	PlagiarismSystemAntiplagiatRU  PlagiarismSystem = "antiplagiat_ru"
	PlagiarismSystemAntiplagiatVUZ PlagiarismSystem = "antiplagiat_vuz"
	PlagiarismSystemETXT           PlagiarismSystem = "etxt"
)

// PlagiarismSystems lists the supported screening services.
var PlagiarismSystems = []PlagiarismSystem{
	PlagiarismSystemAntiplagiatRU,
	PlagiarismSystemAntiplagiatVUZ,
	PlagiarismSystemETXT,
}

// Valid reports whether the screening system is supported.
func (p PlagiarismSystem) Valid() bool {
	for _, known := range PlagiarismSystems {
		if known == p {
			return true
		}
	}
	return false
}
