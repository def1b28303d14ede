package consts

const (
	DARCY_FIELD = 6.33e-3 // md·ft²/(cp·ft) -> ft³/(day·psi), field units
	DAY         = 1.0     // time step unit (day)
)
