package memory

import "go.uber.org/fx"

// Module provides every repository backed by a single in-process Store.
var Module = fx.Module("memory-store",
	fx.Provide(
		NewStore,
		NewTransactionManager,
		NewAccountRepository,
		NewRoleRepository,
		NewCategoryRepository,
		NewBlogRepository,
		NewCommentRepository,
	),
)
