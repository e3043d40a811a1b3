package service

import "wordclash/internal/models"

type builtInLeaf struct {
	name  string
	words []models.WordInput
}

type builtInFolder struct {
	name   string
	leaves []builtInLeaf
}

func pairs(kv ...string) []models.WordInput {
	out := make([]models.WordInput, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, models.WordInput{SourceText: kv[i], TargetText: kv[i+1]})
	}
	return out
}

var builtInThemes = []builtInFolder{
	{
		name: "Basics",
		leaves: []builtInLeaf{
			{"Animals", pairs(
				"der Hund", "dog", "die Katze", "cat", "die Maus", "mouse", "der Vogel", "bird",
				"das Pferd", "horse", "die Kuh", "cow", "das Schwein", "pig", "der Fisch", "fish",
				"das Schaf", "sheep", "die Ente", "duck",
			)},
			{"Colours", pairs(
				"rot", "red", "blau", "blue", "grün", "green", "gelb", "yellow",
				"schwarz", "black", "weiß", "white", "braun", "brown", "grau", "grey",
			)},
			{"Numbers", pairs(
				"eins", "one", "zwei", "two", "drei", "three", "vier", "four", "fünf", "five",
				"sechs", "six", "sieben", "seven", "acht", "eight", "neun", "nine", "zehn", "ten",
			)},
		},
	},
	{
		name: "Everyday",
		leaves: []builtInLeaf{
			{"Food", pairs(
				"das Brot", "bread", "der Käse", "cheese", "der Apfel", "apple", "die Milch", "milk",
				"das Wasser", "water", "das Ei", "egg", "der Reis", "rice", "die Butter", "butter",
			)},
			{"Home", pairs(
				"das Haus", "house", "die Tür", "door", "das Fenster", "window", "der Tisch", "table",
				"der Stuhl", "chair", "das Bett", "bed", "die Küche", "kitchen", "die Lampe", "lamp",
			)},
		},
	},
}
