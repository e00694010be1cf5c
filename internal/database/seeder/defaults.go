package seeder

func Defaults() []Seeder {
	return []Seeder{
		JobPostingsSeeder{},
	}
}
