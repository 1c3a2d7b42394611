package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/app/stores"
	"github.com/shashiranjanraj/dailyfresh/app/views"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
)

// HomeCacheKey holds the cached home page context.
const HomeCacheKey = "index_page_data"

const newestSKUs = 2

type CatalogOptions struct {
	HomeTTL      time.Duration
	ListPageSize int
}

// CatalogService builds the home, detail and category list pages.
type CatalogService struct {
	goods   *repositories.GoodsRepository
	cache   cache.Store
	carts   stores.CartStore
	history stores.HistoryStore
	opts    CatalogOptions
}

func NewCatalogService(goods *repositories.GoodsRepository, c cache.Store, carts stores.CartStore, history stores.HistoryStore, opts CatalogOptions) *CatalogService {
	if opts.ListPageSize < 1 {
		opts.ListPageSize = 1
	}
	return &CatalogService{goods: goods, cache: c, carts: carts, history: history, opts: opts}
}

// Home returns the cached home context, rebuilding it on a miss, with the
// caller's cart count added. The cart count is never cached. A failing
// cache is logged and bypassed.
func (s *CatalogService) Home(ctx context.Context, p *auth.Principal) (views.Home, error) {
	var home views.Home
	hit, err := s.cache.Get(ctx, HomeCacheKey, &home)
	if err != nil {
		logger.WithCtx(ctx).Warn("catalog: home cache read failed", "error", err)
		hit = false
	}
	if !hit {
		if home, err = s.buildHome(ctx); err != nil {
			return views.Home{}, unavailable(err)
		}
		if err := s.cache.Set(ctx, HomeCacheKey, home, s.opts.HomeTTL); err != nil {
			logger.WithCtx(ctx).Warn("catalog: home cache write failed", "error", err)
		}
	}

	if home.CartCount, err = cartCount(ctx, s.carts, p); err != nil {
		return views.Home{}, err
	}
	return home, nil
}

// WarmHome rebuilds the home context from the database and caches it.
// Unlike Home it reports a cache write failure, so the scheduled warm-up
// shows up as failed.
func (s *CatalogService) WarmHome(ctx context.Context) (views.Home, error) {
	home, err := s.buildHome(ctx)
	if err != nil {
		return views.Home{}, unavailable(err)
	}
	if err := s.cache.Set(ctx, HomeCacheKey, home, s.opts.HomeTTL); err != nil {
		return views.Home{}, unavailable(err)
	}
	logger.WithCtx(ctx).Debug("catalog: home cache rebuilt", "types", len(home.Types))
	return home, nil
}

// ClearHome drops the cached home context.
func (s *CatalogService) ClearHome(ctx context.Context) error {
	if err := s.cache.Del(ctx, HomeCacheKey); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *CatalogService) buildHome(ctx context.Context) (views.Home, error) {
	cats, err := s.goods.Categories(ctx)
	if err != nil {
		return views.Home{}, err
	}
	banners, err := s.goods.GoodsBanners(ctx)
	if err != nil {
		return views.Home{}, err
	}
	promos, err := s.goods.PromotionBanners(ctx)
	if err != nil {
		return views.Home{}, err
	}

	rows := make([]views.CategoryRow, 0, len(cats))
	for _, c := range cats {
		images, err := s.goods.TypeBanners(ctx, c.ID, models.DisplayImage)
		if err != nil {
			return views.Home{}, err
		}
		titles, err := s.goods.TypeBanners(ctx, c.ID, models.DisplayTitle)
		if err != nil {
			return views.Home{}, err
		}
		rows = append(rows, views.CategoryRow{
			Category:     views.NewCategory(c),
			ImageBanners: views.NewTypeBanners(images),
			TitleBanners: views.NewTypeBanners(titles),
		})
	}

	return views.Home{
		Types:            rows,
		GoodsBanners:     views.NewGoodsBanners(banners),
		PromotionBanners: views.NewPromotionBanners(promos),
	}, nil
}

// Detail returns a SKU page and, for a signed-in caller, records the view
// in their browse history.
func (s *CatalogService) Detail(ctx context.Context, p *auth.Principal, skuID uint) (views.Detail, error) {
	sku, err := s.goods.FindSKU(ctx, skuID)
	if err != nil {
		return views.Detail{}, lookup(err)
	}

	cats, err := s.goods.Categories(ctx)
	if err != nil {
		return views.Detail{}, unavailable(err)
	}
	comments, err := s.goods.Comments(ctx, sku.ID)
	if err != nil {
		return views.Detail{}, unavailable(err)
	}
	newest, err := s.goods.NewestSKUs(ctx, sku.CategoryID, newestSKUs)
	if err != nil {
		return views.Detail{}, unavailable(err)
	}
	siblings, err := s.goods.SiblingSKUs(ctx, sku.GoodsID, sku.ID)
	if err != nil {
		return views.Detail{}, unavailable(err)
	}

	count, err := cartCount(ctx, s.carts, p)
	if err != nil {
		return views.Detail{}, err
	}
	if p != nil {
		if err := s.history.Record(ctx, p.UserID, sku.ID); err != nil {
			return views.Detail{}, unavailable(err)
		}
	}

	return views.Detail{
		SKU:       views.NewSKU(*sku),
		GoodsName: sku.Goods.Name,
		GoodsInfo: sku.Goods.Detail,
		Category:  views.NewCategory(sku.Category),
		Types:     views.NewCategories(cats),
		Comments:  views.NewComments(comments),
		NewSKUs:   views.NewSKUs(newest),
		SameSPU:   views.NewSKUs(siblings),
		CartCount: count,
	}, nil
}

// List pages through a category. rawPage is clamped to page 1 when it is
// not a valid page; unknown sort values fall back to the default order.
func (s *CatalogService) List(ctx context.Context, p *auth.Principal, categoryID uint, rawPage, sort string) (views.List, error) {
	cat, err := s.goods.FindCategory(ctx, categoryID)
	if err != nil {
		return views.List{}, lookup(err)
	}

	switch sort {
	case repositories.SortPrice, repositories.SortHot:
	default:
		sort = repositories.SortDefault
	}

	skus, page, err := s.goods.ListSKUs(ctx, cat.ID, sort, rawPage, s.opts.ListPageSize)
	if err != nil {
		return views.List{}, unavailable(err)
	}
	cats, err := s.goods.Categories(ctx)
	if err != nil {
		return views.List{}, unavailable(err)
	}
	newest, err := s.goods.NewestSKUs(ctx, cat.ID, newestSKUs)
	if err != nil {
		return views.List{}, unavailable(err)
	}
	count, err := cartCount(ctx, s.carts, p)
	if err != nil {
		return views.List{}, err
	}

	return views.List{
		Category:  views.NewCategory(*cat),
		Types:     views.NewCategories(cats),
		SKUs:      views.NewSKUs(skus),
		Page:      page,
		NewSKUs:   views.NewSKUs(newest),
		Sort:      sort,
		CartCount: count,
	}, nil
}

// SKUs loads the given SKUs in the order of ids, skipping ids that no
// longer exist.
func (s *CatalogService) SKUs(ctx context.Context, ids []uint) ([]views.SKU, error) {
	found, err := s.goods.FindSKUs(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}
	out := make([]views.SKU, 0, len(ids))
	for _, id := range ids {
		if sku, ok := found[id]; ok {
			out = append(out, views.NewSKU(sku))
		}
	}
	return out, nil
}

// Categories lists every category.
func (s *CatalogService) Categories(ctx context.Context) ([]views.Category, error) {
	cats, err := s.goods.Categories(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return views.NewCategories(cats), nil
}
