package seeder

// Defaults is the ordered seed set used by `careerctl seed`. Later seeders
// look up rows inserted by earlier ones by name.
func Defaults() []Seeder {
	return []Seeder{
		SkillsSeeder{},
		UniversitiesSeeder{},
		CompaniesSeeder{},
		JobsSeeder{},
		CareerFairsSeeder{},
	}
}
