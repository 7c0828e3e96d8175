package impl

import (
	"devroots/internal/domain/entity"
	"devroots/internal/usecase"
)

func toAccountOutput(account *entity.Account, blogs []*entity.Blog, comments []*entity.Comment) *usecase.AccountOutput {
	return &usecase.AccountOutput{
		ID:             account.ID.String(),
		Username:       account.Username,
		Email:          account.Email,
		ProfilePicture: account.ProfilePictureURL,
		Roles:          account.Roles.ToStrings(),
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
		Blogs:          toBlogOutputs(blogs),
		Comments:       toCommentOutputs(comments),
	}
}

func toCategoryOutput(category *entity.Category) *usecase.CategoryOutput {
	return &usecase.CategoryOutput{
		ID:        category.ID,
		Title:     category.Title,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func toBlogOutput(blog *entity.Blog) *usecase.BlogOutput {
	return &usecase.BlogOutput{
		ID:         blog.ID,
		Title:      blog.Title,
		Content:    blog.Content,
		Username:   blog.Username,
		CategoryID: blog.CategoryID,
		CreatedAt:  blog.CreatedAt,
		UpdatedAt:  blog.UpdatedAt,
		Comments:   toCommentOutputs(blog.Comments),
	}
}

func toBlogOutputs(blogs []*entity.Blog) []*usecase.BlogOutput {
	if blogs == nil {
		return nil
	}

	outputs := make([]*usecase.BlogOutput, 0, len(blogs))
	for _, blog := range blogs {
		outputs = append(outputs, toBlogOutput(blog))
	}

	return outputs
}

func toCommentOutput(comment *entity.Comment) *usecase.CommentOutput {
	return &usecase.CommentOutput{
		ID:              comment.ID,
		ParentCommentID: comment.ParentCommentID,
		Username:        comment.Username,
		BlogID:          comment.BlogID,
		Content:         comment.Content,
		CreatedAt:       comment.CreatedAt,
		UpdatedAt:       comment.UpdatedAt,
	}
}

func toCommentOutputs(comments []*entity.Comment) []*usecase.CommentOutput {
	if comments == nil {
		return nil
	}

	outputs := make([]*usecase.CommentOutput, 0, len(comments))
	for _, comment := range comments {
		outputs = append(outputs, toCommentOutput(comment))
	}

	return outputs
}

func toCommentTreeOutputs(nodes []*entity.CommentNode) []*usecase.CommentOutput {
	outputs := make([]*usecase.CommentOutput, 0, len(nodes))
	for _, node := range nodes {
		output := toCommentOutput(node.Comment)
		if len(node.Replies) > 0 {
			output.Replies = toCommentTreeOutputs(node.Replies)
		}
		outputs = append(outputs, output)
	}

	return outputs
}
