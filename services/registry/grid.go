package registry

import "f1led-go/types"

func rgb(r, g, b uint8) types.RGBColor { return types.RGBColor{R: r, G: g, B: b} }

// grid is the 2023 field with team livery colours.
var grid = []types.DriverInfo{
	{Number: 1, Code: "VER", Name: "Max Verstappen", Team: "Red Bull", Color: rgb(30, 65, 255)},
	{Number: 2, Code: "SAR", Name: "Logan Sargeant", Team: "Williams", Color: rgb(0, 82, 255)},
	{Number: 4, Code: "NOR", Name: "Lando Norris", Team: "McLaren", Color: rgb(255, 135, 0)},
	{Number: 10, Code: "GAS", Name: "Pierre Gasly", Team: "Alpine", Color: rgb(2, 144, 240)},
	{Number: 11, Code: "PER", Name: "Sergio Perez", Team: "Red Bull", Color: rgb(30, 65, 255)},
	{Number: 14, Code: "ALO", Name: "Fernando Alonso", Team: "Aston Martin", Color: rgb(0, 110, 120)},
	{Number: 16, Code: "LEC", Name: "Charles Leclerc", Team: "Ferrari", Color: rgb(220, 0, 0)},
	{Number: 18, Code: "STR", Name: "Lance Stroll", Team: "Aston Martin", Color: rgb(0, 110, 120)},
	{Number: 20, Code: "MAG", Name: "Kevin Magnussen", Team: "Haas", Color: rgb(160, 207, 205)},
	{Number: 22, Code: "TSU", Name: "Yuki Tsunoda", Team: "AlphaTauri", Color: rgb(60, 130, 200)},
	{Number: 23, Code: "ALB", Name: "Alex Albon", Team: "Williams", Color: rgb(0, 82, 255)},
	{Number: 24, Code: "ZHO", Name: "Zhou Guanyu", Team: "Alfa Romeo", Color: rgb(165, 160, 155)},
	{Number: 27, Code: "HUL", Name: "Nico Hulkenberg", Team: "Haas", Color: rgb(160, 207, 205)},
	{Number: 31, Code: "OCO", Name: "Esteban Ocon", Team: "Alpine", Color: rgb(2, 144, 240)},
	{Number: 40, Code: "LAW", Name: "Liam Lawson", Team: "AlphaTauri", Color: rgb(60, 130, 200)},
	{Number: 44, Code: "HAM", Name: "Lewis Hamilton", Team: "Mercedes", Color: rgb(0, 210, 190)},
	{Number: 55, Code: "SAI", Name: "Carlos Sainz", Team: "Ferrari", Color: rgb(220, 0, 0)},
	{Number: 63, Code: "RUS", Name: "George Russell", Team: "Mercedes", Color: rgb(0, 210, 190)},
	{Number: 77, Code: "BOT", Name: "Valtteri Bottas", Team: "Alfa Romeo", Color: rgb(165, 160, 155)},
	{Number: 81, Code: "PIA", Name: "Oscar Piastri", Team: "McLaren", Color: rgb(255, 135, 0)},
}
