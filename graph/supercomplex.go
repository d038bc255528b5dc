package graph

// ComplexLink is a hand-curated pedestrian connection between two
// parent stations that are physically linked by an internal passage the
// transfer table does not capture. Each link is applied exactly as
// declared; the list carries both directions explicitly.
type ComplexLink struct {
	From string
	To   string
	Time int // seconds
}

// SuperComplexes covers the big NYC interchange complexes. GTFS treats
// these as separate parent stations even though they share fare control.
var SuperComplexes = []ComplexLink{
	// Times Square complex
	{From: "127", To: "A27", Time: 180}, // Times Sq (1/2/3) <-> Port Auth (A/C/E)
	{From: "A27", To: "127", Time: 180},
	{From: "127", To: "725", Time: 120}, // Times Sq (1/2/3) <-> Times Sq (7)
	{From: "725", To: "127", Time: 120},
	{From: "127", To: "R16", Time: 120}, // Times Sq (1/2/3) <-> Times Sq (N/Q/R/W)
	{From: "R16", To: "127", Time: 120},
	{From: "725", To: "R16", Time: 120}, // Times Sq (7) <-> Times Sq (N/Q/R/W)
	{From: "R16", To: "725", Time: 120},
	{From: "A27", To: "R16", Time: 180}, // Port Auth (A/C/E) <-> Times Sq (N/Q/R/W)
	{From: "R16", To: "A27", Time: 180},

	// 14th Street complex
	{From: "132", To: "635", Time: 180}, // 14 St (1/2/3) <-> Union Sq (4/5/6)
	{From: "635", To: "132", Time: 180},
	{From: "635", To: "A31", Time: 240}, // Union Sq (4/5/6) <-> 14 St (A/C/E)
	{From: "A31", To: "635", Time: 240},
	{From: "635", To: "L03", Time: 120}, // Union Sq (4/5/6) <-> Union Sq (L)
	{From: "L03", To: "635", Time: 120},
	{From: "132", To: "A31", Time: 240}, // 14 St (1/2/3) <-> 14 St (A/C/E)
	{From: "A31", To: "132", Time: 240},

	// Fulton complex
	{From: "418", To: "419", Time: 120}, // Fulton (2/3) <-> Fulton (4/5)
	{From: "419", To: "418", Time: 120},
	{From: "419", To: "A38", Time: 120}, // Fulton (4/5) <-> Fulton (A/C)
	{From: "A38", To: "419", Time: 120},
	{From: "A38", To: "229", Time: 120}, // Fulton (A/C) <-> Fulton (J/Z)
	{From: "229", To: "A38", Time: 120},
	{From: "418", To: "A38", Time: 120}, // Fulton (2/3) <-> Fulton (A/C)
	{From: "A38", To: "418", Time: 120},
}
