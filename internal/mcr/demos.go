package mcr

import (
	"context"
	"fmt"
	"io"
)

// Demo is a scripted scenario: assertions to build a knowledge base and a
// sample question to prove against it.
type Demo struct {
	Name        string
	Description string
	Setup       []string
	SampleQuery string
}

// Demos returns the built-in scenarios.
func Demos() []Demo {
	return []Demo{
		{
			Name:        "Royal Family Tree",
			Description: "Genealogy of the British royal family, for complex relationship queries.",
			Setup: []string{
				"Elizabeth and Philip are the parents of Charles and Anne.",
				"Charles and Diana are the parents of William and Harry.",
				"William and Catherine are the parents of George.",
				"Elizabeth, Diana, Catherine, Anne are female.",
				"Philip, Charles, William, Harry, George are male.",
				"A person's mother is their female parent.",
				"A person's father is their male parent.",
				"A grandparent is the parent of a parent.",
			},
			SampleQuery: "Who are the grandparents of Prince George?",
		},
		{
			Name:        "Spatial Reasoning",
			Description: "A scene with objects, demonstrating schema-aware rule creation.",
			Setup: []string{
				"The sphere is large and red.",
				"The cube is small and blue.",
				"The cube is behind the sphere.",
				"The pyramid is on top of the cube.",
				"Something is in front of an object if that object is behind it.",
				"Something is above an object if it is on top of that object.",
			},
			SampleQuery: "What is in front of the large sphere?",
		},
		{
			Name:        "Murder Mystery",
			Description: "A classic logic puzzle to deduce a suspect from clues.",
			Setup: []string{
				"Plum was in the library at 9pm.",
				"Scarlet was in the lounge at 9pm.",
				"Mustard owned the dagger.",
				"The dagger was found in the library.",
				"The victim is Mr. Black.",
				"The crime scene is the library.",
				"The time of death was 9pm.",
				"Plum and Scarlet had a motive to harm Mr. Black.",
				"A person is a suspect if they had a motive and were at the crime scene at the time of death.",
			},
			SampleQuery: "Who is a suspect?",
		},
	}
}

// FindDemo looks a scenario up by name.
func FindDemo(name string) (Demo, bool) {
	for _, d := range Demos() {
		if d.Name == name {
			return d, true
		}
	}
	return Demo{}, false
}

// RunDemo plays a scenario through the service in a fresh session, writing
// a transcript to w. The session is deleted before returning.
func (s *Service) RunDemo(ctx context.Context, w io.Writer, d Demo) error {
	id, err := s.CreateSession("")
	if err != nil {
		return err
	}
	defer s.DeleteSession(id)

	fmt.Fprintf(w, "=== %s ===\n%s\n\n", d.Name, d.Description)
	for _, text := range d.Setup {
		res, err := s.Assert(ctx, id, text)
		if err != nil {
			return fmt.Errorf("assert %q: %w", text, err)
		}
		fmt.Fprintf(w, "assert [%s] %q\n", res.Intent, text)
		for _, c := range res.AddedClauses {
			fmt.Fprintf(w, "  + %s\n", c)
		}
	}

	fmt.Fprintf(w, "\nquery %q\n", d.SampleQuery)
	qr, err := s.Query(ctx, id, d.SampleQuery, QueryOptions{})
	if err != nil {
		return fmt.Errorf("query %q: %w", d.SampleQuery, err)
	}
	fmt.Fprintf(w, "  goal: %s\n", qr.GeneratedQuery)
	for _, b := range qr.Bindings {
		fmt.Fprintf(w, "  binding: %v\n", b)
	}
	fmt.Fprintf(w, "  answer: %s\n", qr.Answer)
	return nil
}
