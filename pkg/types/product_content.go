package types

// FAQ is a question/answer pair attached to a catalog entry.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ProcedureStep describes one step of how a service is carried out.
type ProcedureStep struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Img   string `json:"img"`
}
