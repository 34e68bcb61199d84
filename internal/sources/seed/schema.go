package seed

// File is the on-disk fixture layout.
//
//	profiles:
//	  - username: ada
//	    email: ada@example.com
//	    password: ${ADA_PASSWORD}
//	    firstName: Ada
//	posts:
//	  - author: ada
//	    body: first post
//	follows:
//	  - from: ada
//	    to: bob
type File struct {
	Profiles []ProfileEntry `yaml:"profiles"`
	Posts    []PostEntry    `yaml:"posts"`
	Follows  []FollowEntry  `yaml:"follows"`
}

type ProfileEntry struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
	ImgURL    string `yaml:"imgurl"`
}

// PostEntry references its author by username.
type PostEntry struct {
	Author string `yaml:"author"`
	Body   string `yaml:"body"`
	ImgURL string `yaml:"imgurl"`
}

type FollowEntry struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}
