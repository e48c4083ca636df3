package handler

import "net/http"

type faqResponse struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type faqListResponse struct {
	FAQs []faqResponse `json:"faqs"`
}

// ListFAQs returns the FAQ list loaded at startup. An empty list is a valid
// answer, not an error.
func (h *Handler) ListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs := make([]faqResponse, len(h.faqs))
	for i, f := range h.faqs {
		faqs[i] = faqResponse{ID: f.ID, Question: f.Question, Answer: f.Answer}
	}
	writeJSON(w, r, http.StatusOK, faqListResponse{FAQs: faqs})
}
